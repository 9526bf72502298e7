package domain

// Table is a mongo collection name
type Table string

const (
	TableListings       Table = "listings"
	TableBids           Table = "bids"
	TableOffers         Table = "offers"
	TableSales          Table = "sales"
	TableRoyalties      Table = "royalties"
	TableActivities     Table = "activities"
	TableTokens         Table = "tokens"
	TableRoyaltyConfigs Table = "royalty_configs"
	TableFavorites      Table = "favorites"
	TableCreatorFollows Table = "creator_follows"
)
