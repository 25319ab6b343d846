package main

import (
	"net/http"
	"strings"

	"vidtube/pkg/media"
	"vidtube/pkg/toggle"
	"vidtube/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app carries the wired dependencies; handlers are methods on it.
type app struct {
	cfg    Config
	db     *gorm.DB
	log    *zap.Logger
	tokens *token.Service
	creds  token.CredentialStore
	engine *toggle.Engine
	media  media.Host
}

func setupRoutes(r *gin.Engine, a *app) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if strings.HasPrefix(a.cfg.MediaURL, "/") {
		r.Static(a.cfg.MediaURL, a.cfg.MediaBase)
	}

	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", a.register)
	users.POST("/login", a.login)
	users.POST("/refresh-token", a.refreshToken)
	users.POST("/logout", a.requireAuth(), a.logout)
	users.POST("/change-password", a.requireAuth(), a.changePassword)
	users.GET("/current-user", a.requireAuth(), a.currentUserHandler)
	users.PATCH("/update-account", a.requireAuth(), a.updateAccount)
	users.PATCH("/update-avatar", a.requireAuth(), a.updateAvatar)
	users.PATCH("/update-cover-image", a.requireAuth(), a.updateCoverImage)
	users.GET("/channel/:username", a.requireAuth(), a.channelProfile)
	users.GET("/watch-history", a.requireAuth(), a.watchHistory)

	videos := api.Group("/videos")
	videos.GET("/allvideos", a.allVideos)
	videos.GET("/:videoId", a.optionalAuth(), a.getVideoByID)
	videos.GET("", a.requireAuth(), a.listVideos)
	videos.POST("", a.requireAuth(), a.publishVideo)
	videos.PATCH("/:videoId", a.requireAuth(), a.updateVideo)
	videos.DELETE("/:videoId", a.requireAuth(), a.deleteVideo)
	videos.PATCH("/toggle/publish/:videoId", a.requireAuth(), a.togglePublish)

	comments := api.Group("/comments", a.requireAuth())
	comments.GET("/:videoId", a.listComments)
	comments.POST("/:videoId", a.addComment)
	comments.PATCH("/c/:commentId", a.updateComment)
	comments.DELETE("/c/:commentId", a.deleteComment)

	tweets := api.Group("/tweets", a.requireAuth())
	tweets.POST("", a.createTweet)
	tweets.GET("", a.userTweets)
	tweets.PATCH("/:tweetId", a.updateTweet)
	tweets.DELETE("/:tweetId", a.deleteTweet)

	likes := api.Group("/likes", a.requireAuth())
	likes.POST("/toggle/v/:videoId", a.toggleVideoLike)
	likes.POST("/toggle/c/:commentId", a.toggleCommentLike)
	likes.POST("/toggle/t/:tweetId", a.toggleTweetLike)
	likes.GET("/videos", a.likedVideos)

	subs := api.Group("/subscriptions", a.requireAuth())
	subs.POST("/c/:channelId", a.toggleSubscription)
	subs.GET("/c/:channelId/subscribers", a.channelSubscribers)
	subs.GET("/subscribed", a.subscribedChannels)

	playlists := api.Group("/playlists", a.requireAuth())
	playlists.POST("", a.createPlaylist)
	playlists.GET("/user/:userId", a.userPlaylists)
	playlists.GET("/:playlistId", a.getPlaylist)
	playlists.PATCH("/add/:videoId/:playlistId", a.addVideoToPlaylist)
	playlists.PATCH("/remove/:videoId/:playlistId", a.removeVideoFromPlaylist)
	playlists.PATCH("/:playlistId", a.updatePlaylist)
	playlists.DELETE("/:playlistId", a.deletePlaylist)

	dashboard := api.Group("/dashboard", a.requireAuth())
	dashboard.GET("/stats", a.channelStats)
	dashboard.GET("/videos", a.channelVideos)
}
