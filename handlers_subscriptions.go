package main

import (
	"net/http"
	"strconv"

	"vidtube/models"
	"vidtube/pkg/apperr"
	"vidtube/pkg/toggle"

	"github.com/gin-gonic/gin"
)

func (a *app) toggleSubscription(c *gin.Context) {
	p, _ := currentUser(c)
	channelID, err := strconv.ParseUint(c.Param("channelId"), 10, 64)
	if err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "channelId is invalid"))
		return
	}
	if uint(channelID) == p.ID {
		a.respondErr(c, apperr.New(apperr.Validation, "you cannot subscribe to yourself"))
		return
	}
	var channel models.User
	if err := a.db.First(&channel, uint(channelID)).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "channel not found"))
		return
	}
	result, err := a.engine.Toggle(c.Request.Context(), p.ID, channel.ID, toggle.KindChannel)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "toggle failed", err))
		return
	}
	msg := "followed"
	if result == toggle.Deleted {
		msg = "unfollowed"
	}
	respond(c, http.StatusOK, gin.H{"result": result}, msg)
}

// channelSubscribers lists the users subscribed to a channel.
func (a *app) channelSubscribers(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("channelId"), 10, 64)
	if err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "channelId is invalid"))
		return
	}
	var subscribers []models.User
	err2 := a.db.
		Joins("JOIN edges ON edges.actor_id = users.id AND edges.target_kind = ? AND edges.target_id = ?",
			string(toggle.KindChannel), uint(channelID)).
		Order("users.id").
		Find(&subscribers).Error
	if err2 != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err2))
		return
	}
	respond(c, http.StatusOK, subscribers, "channel subscribers fetched successfully")
}

// subscribedChannels lists the channels the caller subscribes to.
func (a *app) subscribedChannels(c *gin.Context) {
	p, _ := currentUser(c)
	var channels []models.User
	err := a.db.
		Joins("JOIN edges ON edges.target_id = users.id AND edges.target_kind = ? AND edges.actor_id = ?",
			string(toggle.KindChannel), p.ID).
		Order("users.id").
		Find(&channels).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, channels, "subscribed channels fetched successfully")
}
