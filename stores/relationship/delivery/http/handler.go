package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain/favorite"
	"github.com/x-xyz/marketengine/domain/follow"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	favorite favorite.Usecase
	follow   follow.Usecase
}

func New(e *echo.Echo, favorite favorite.Usecase, follow follow.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{favorite, follow}

	gf := e.Group("/favorites")

	gf.POST("", h.addFavorite, authMiddleware.Auth())

	gf.DELETE("", h.removeFavorite, authMiddleware.Auth())

	gf.GET("/check", h.isFavorite, authMiddleware.Auth())

	gu := e.Group("/users/:id")

	gu.GET("/favorites", h.getFavorites)

	gu.POST("/follow", h.followUser, authMiddleware.Auth())

	gu.DELETE("/follow", h.unfollowUser, authMiddleware.Auth())

	gu.GET("/followers", h.getFollowers, authMiddleware.OptionalAuth())

	gu.GET("/followings", h.getFollowings)
}

type favoriteParams struct {
	TokenId      string `json:"tokenId" query:"tokenId"`
	CollectionId string `json:"collectionId" query:"collectionId"`
}

func (p *favoriteParams) favorite(userId string) favorite.Favorite {
	return favorite.Favorite{UserId: userId, TokenId: p.TokenId, CollectionId: p.CollectionId}
}

func (h *handler) addFavorite(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &favoriteParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	count, err := h.favorite.Add(ctx, p.favorite(c.Get("userId").(string)))
	if err != nil {
		ctx.WithField("err", err).Warn("favorite.Add failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]int{"favorites": count})
}

func (h *handler) removeFavorite(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &favoriteParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	count, err := h.favorite.Remove(ctx, p.favorite(c.Get("userId").(string)))
	if err != nil {
		ctx.WithField("err", err).Warn("favorite.Remove failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, map[string]int{"favorites": count})
}

func (h *handler) isFavorite(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &favoriteParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.favorite.IsFavorite(ctx, p.favorite(c.Get("userId").(string)))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getFavorites(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &delivery.PageParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	offset, limit := p.Page()
	res, err := h.favorite.ListByUser(ctx, c.Param("id"), favorite.WithPagination(offset, limit))
	if err != nil {
		ctx.WithField("err", err).Error("favorite.ListByUser failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) followUser(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.follow.Follow(ctx, c.Get("userId").(string), c.Param("id")); err != nil {
		ctx.WithField("err", err).Warn("follow.Follow failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) unfollowUser(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.follow.Unfollow(ctx, c.Get("userId").(string), c.Param("id")); err != nil {
		ctx.WithField("err", err).Warn("follow.Unfollow failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getFollowers(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	userId := c.Param("id")

	followers, err := h.follow.GetFollowers(ctx, userId)
	if err != nil {
		ctx.WithField("err", err).Error("follow.GetFollowers failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := struct {
		Followers   []string `json:"followers"`
		IsFollowing bool     `json:"isFollowing"`
	}{Followers: followers}

	if caller, ok := c.Get("userId").(string); ok {
		if res.IsFollowing, err = h.follow.IsFollowing(ctx, caller, userId); err != nil {
			ctx.WithField("err", err).Error("follow.IsFollowing failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getFollowings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.follow.GetFollowings(ctx, c.Param("id"))
	if err != nil {
		ctx.WithField("err", err).Error("follow.GetFollowings failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
