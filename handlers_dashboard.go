package main

import (
	"net/http"

	"vidtube/models"
	"vidtube/pkg/apperr"
	"vidtube/pkg/toggle"

	"github.com/gin-gonic/gin"
)

// channelStats aggregates the caller's channel numbers. Total views is a
// live SUM over the channel's videos rather than a maintained counter; see
// DESIGN.md for the tradeoff.
func (a *app) channelStats(c *gin.Context) {
	p, _ := currentUser(c)

	var totalViews int64
	if err := a.db.Model(&models.Video{}).
		Where("owner_id = ?", p.ID).
		Select("COALESCE(SUM(views), 0)").
		Scan(&totalViews).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "stats query failed", err))
		return
	}

	subscribers, err := a.engine.Count(c.Request.Context(), p.ID, toggle.KindChannel)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "stats query failed", err))
		return
	}

	var likesGiven int64
	if err := a.db.Model(&models.Edge{}).
		Where("actor_id = ? AND target_kind <> ?", p.ID, string(toggle.KindChannel)).
		Count(&likesGiven).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "stats query failed", err))
		return
	}

	var comments int64
	if err := a.db.Model(&models.Comment{}).Where("owner_id = ?", p.ID).
		Count(&comments).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "stats query failed", err))
		return
	}

	var videos int64
	if err := a.db.Model(&models.Video{}).Where("owner_id = ?", p.ID).
		Count(&videos).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "stats query failed", err))
		return
	}

	respond(c, http.StatusOK, gin.H{
		"totalViews":  totalViews,
		"subscribers": subscribers,
		"likesGiven":  likesGiven,
		"comments":    comments,
		"videos":      videos,
	}, "channel stats")
}

func (a *app) channelVideos(c *gin.Context) {
	p, _ := currentUser(c)
	var videos []models.Video
	err := a.db.Where("owner_id = ?", p.ID).Order("id desc").Find(&videos).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, videos, "channel videos")
}
