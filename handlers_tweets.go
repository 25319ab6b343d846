package main

import (
	"net/http"
	"strconv"
	"strings"

	"vidtube/models"
	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func (a *app) createTweet(c *gin.Context) {
	p, _ := currentUser(c)
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "content is required"))
		return
	}
	tweet := models.Tweet{OwnerID: p.ID, Content: strings.TrimSpace(req.Content)}
	if err := a.db.Create(&tweet).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "tweet create failed", err))
		return
	}
	respond(c, http.StatusCreated, tweet, "tweeted successfully")
}

func (a *app) userTweets(c *gin.Context) {
	p, _ := currentUser(c)
	var tweets []models.Tweet
	err := a.db.Where("owner_id = ?", p.ID).Order("id desc").Limit(100).Find(&tweets).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, tweets, "tweets fetched successfully")
}

func (a *app) updateTweet(c *gin.Context) {
	tweet, err := a.loadOwnedTweet(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "content is required"))
		return
	}
	if err := a.db.Model(tweet).Update("content", strings.TrimSpace(req.Content)).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "tweet update failed", err))
		return
	}
	respond(c, http.StatusOK, tweet, "tweet updated successfully")
}

func (a *app) deleteTweet(c *gin.Context) {
	tweet, err := a.loadOwnedTweet(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if err := a.db.Delete(tweet).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "tweet delete failed", err))
		return
	}
	respond(c, http.StatusOK, nil, "tweet deleted successfully")
}

func (a *app) loadTweet(c *gin.Context) (*models.Tweet, error) {
	id, err := strconv.ParseUint(c.Param("tweetId"), 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "tweetId is invalid")
	}
	var tweet models.Tweet
	if err := a.db.First(&tweet, uint(id)).Error; err != nil {
		return nil, apperr.New(apperr.NotFound, "tweet not found")
	}
	return &tweet, nil
}

func (a *app) loadOwnedTweet(c *gin.Context) (*models.Tweet, error) {
	tweet, err := a.loadTweet(c)
	if err != nil {
		return nil, err
	}
	p, _ := currentUser(c)
	if tweet.OwnerID != p.ID {
		return nil, apperr.New(apperr.Unauthorized, "you are not the owner of this tweet")
	}
	return tweet, nil
}
