package main

import (
	"net/http"

	"vidtube/models"
	"vidtube/pkg/apperr"
	"vidtube/pkg/toggle"

	"github.com/gin-gonic/gin"
)

func (a *app) toggleVideoLike(c *gin.Context) {
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	a.runToggle(c, video.ID, toggle.KindVideo, "video liked successfully", "like removed successfully")
}

func (a *app) toggleCommentLike(c *gin.Context) {
	comment, err := a.loadComment(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	a.runToggle(c, comment.ID, toggle.KindComment, "comment liked successfully", "like removed successfully")
}

func (a *app) toggleTweetLike(c *gin.Context) {
	tweet, err := a.loadTweet(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	a.runToggle(c, tweet.ID, toggle.KindTweet, "tweet liked successfully", "like removed successfully")
}

// runToggle flips the edge for the authenticated actor against a target the
// caller has already verified to exist.
func (a *app) runToggle(c *gin.Context, target uint, kind toggle.Kind, createdMsg, deletedMsg string) {
	p, _ := currentUser(c)
	result, err := a.engine.Toggle(c.Request.Context(), p.ID, target, kind)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "toggle failed", err))
		return
	}
	msg := createdMsg
	if result == toggle.Deleted {
		msg = deletedMsg
	}
	respond(c, http.StatusOK, gin.H{"result": result}, msg)
}

// likedVideos lists videos the caller currently has a like edge to.
func (a *app) likedVideos(c *gin.Context) {
	p, _ := currentUser(c)
	var videos []models.Video
	err := a.db.
		Joins("JOIN edges ON edges.target_id = videos.id AND edges.target_kind = ? AND edges.actor_id = ?",
			string(toggle.KindVideo), p.ID).
		Preload("Owner").
		Order("videos.id desc").
		Find(&videos).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, videos, "liked videos fetched successfully")
}
