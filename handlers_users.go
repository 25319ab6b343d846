package main

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"vidtube/models"
	"vidtube/pkg/apperr"
	"vidtube/pkg/media"
	"vidtube/pkg/toggle"
	"vidtube/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxImageSize = 5 * 1024 * 1024

func (a *app) register(c *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(c.PostForm("username")))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	fullname := strings.TrimSpace(c.PostForm("fullname"))
	password := c.PostForm("password")

	if username == "" || email == "" || fullname == "" || password == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "please provide all the details"))
		return
	}
	if len(password) < 6 {
		a.respondErr(c, apperr.New(apperr.Validation, "password too short (min 6)"))
		return
	}

	var existing models.User
	err := a.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		a.respondErr(c, apperr.New(apperr.Conflict, "user already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "registration failed", err))
		return
	}

	avatar, err := a.storeImageField(c, "avatar")
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if avatar == nil {
		a.respondErr(c, apperr.New(apperr.Validation, "please provide avatar image"))
		return
	}
	cover, err := a.storeImageField(c, "coverImage")
	if err != nil {
		a.respondErr(c, err)
		return
	}

	hashed, err := token.HashPassword(password)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "registration failed", err))
		return
	}

	user := models.User{
		Username:       username,
		Email:          email,
		FullName:       fullname,
		HashedPassword: hashed,
		Avatar:         avatar.URL,
		AvatarID:       avatar.PublicID,
	}
	if cover != nil {
		user.CoverImage = cover.URL
		user.CoverImageID = cover.PublicID
	}
	if err := a.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the initial check
			a.respondErr(c, apperr.New(apperr.Conflict, "user already exists"))
			return
		}
		a.respondErr(c, apperr.Wrap(apperr.Internal, "registration failed", err))
		return
	}
	respond(c, http.StatusCreated, user, "user created successfully")
}

func (a *app) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "username or email and password are required"))
		return
	}
	login := strings.ToLower(strings.TrimSpace(req.Username))
	if login == "" {
		login = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if login == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "username or email is required"))
		return
	}

	user, err := a.findUserByLogin(login)
	if err != nil || !token.VerifyPassword(req.Password, user.HashedPassword) {
		a.respondErr(c, apperr.New(apperr.Unauthorized, "invalid credentials"))
		return
	}

	pair, err := a.tokens.IssuePair(c.Request.Context(), user.ID, user.Username)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "login failed", err))
		return
	}
	a.setTokenCookies(c, pair.Access, pair.Refresh)
	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.Access,
		"refreshToken": pair.Refresh,
	}, "login successful")
}

func (a *app) logout(c *gin.Context) {
	p, _ := currentUser(c)
	if err := a.tokens.Revoke(c.Request.Context(), p.ID); err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "logout failed", err))
		return
	}
	a.clearTokenCookies(c)
	respond(c, http.StatusOK, nil, "logged out")
}

func (a *app) refreshToken(c *gin.Context) {
	presented, _ := c.Cookie(refreshCookie)
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		a.respondErr(c, apperr.New(apperr.Unauthorized, "please login to access this route"))
		return
	}
	pair, err := a.tokens.Rotate(c.Request.Context(), presented)
	if errors.Is(err, token.ErrUnauthorized) {
		// rotated-out, revoked and never-issued all read the same
		a.respondErr(c, apperr.New(apperr.Unauthorized, "invalid or expired token"))
		return
	}
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "token refresh failed", err))
		return
	}
	a.setTokenCookies(c, pair.Access, pair.Refresh)
	respond(c, http.StatusOK, pair, "token refreshed")
}

func (a *app) changePassword(c *gin.Context) {
	p, _ := currentUser(c)
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "old and new passwords are required"))
		return
	}
	if len(req.NewPassword) < 6 {
		a.respondErr(c, apperr.New(apperr.Validation, "password too short (min 6)"))
		return
	}
	var user models.User
	if err := a.db.First(&user, p.ID).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	if !token.VerifyPassword(req.OldPassword, user.HashedPassword) {
		a.respondErr(c, apperr.New(apperr.Unauthorized, "invalid credentials"))
		return
	}
	hashed, err := token.HashPassword(req.NewPassword)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "password change failed", err))
		return
	}
	if err := a.db.Model(&user).Update("hashed_password", hashed).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "password change failed", err))
		return
	}
	respond(c, http.StatusOK, nil, "password changed")
}

func (a *app) currentUserHandler(c *gin.Context) {
	p, _ := currentUser(c)
	var user models.User
	if err := a.db.First(&user, p.ID).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	respond(c, http.StatusOK, user, "current user")
}

func (a *app) updateAccount(c *gin.Context) {
	p, _ := currentUser(c)
	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.FullName); v != "" {
		updates["full_name"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
		updates["email"] = v
	}
	if len(updates) == 0 {
		a.respondErr(c, apperr.New(apperr.Validation, "nothing to update"))
		return
	}
	if err := a.db.Model(&models.User{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			a.respondErr(c, apperr.New(apperr.Conflict, "email already in use"))
			return
		}
		a.respondErr(c, apperr.Wrap(apperr.Internal, "update failed", err))
		return
	}
	var user models.User
	a.db.First(&user, p.ID)
	respond(c, http.StatusOK, user, "account updated")
}

func (a *app) updateAvatar(c *gin.Context) {
	a.updateUserImage(c, "avatar", "avatar", "avatar_id")
}

func (a *app) updateCoverImage(c *gin.Context) {
	a.updateUserImage(c, "coverImage", "cover_image", "cover_image_id")
}

func (a *app) updateUserImage(c *gin.Context, field, urlCol, idCol string) {
	p, _ := currentUser(c)
	asset, err := a.storeImageField(c, field)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if asset == nil {
		a.respondErr(c, apperr.New(apperr.Validation, field+" file is required"))
		return
	}
	var user models.User
	if err := a.db.First(&user, p.ID).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	oldID := user.AvatarID
	if field == "coverImage" {
		oldID = user.CoverImageID
	}
	err = a.db.Model(&models.User{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{urlCol: asset.URL, idCol: asset.PublicID}).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "update failed", err))
		return
	}
	if oldID != "" {
		if err := a.media.Delete(c.Request.Context(), oldID); err != nil {
			a.log.Warn("stale media not deleted", zap.String("publicId", oldID), zap.Error(err))
		}
	}
	respond(c, http.StatusOK, gin.H{"url": asset.URL}, field+" updated")
}

func (a *app) channelProfile(c *gin.Context) {
	p, _ := currentUser(c)
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	var channel models.User
	if err := a.db.Where("username = ?", username).First(&channel).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "channel not found"))
		return
	}
	ctx := c.Request.Context()
	subscribers, err := a.engine.Count(ctx, channel.ID, toggle.KindChannel)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "channel lookup failed", err))
		return
	}
	var subscribedTo int64
	if err := a.db.Model(&models.Edge{}).
		Where("actor_id = ? AND target_kind = ?", channel.ID, string(toggle.KindChannel)).
		Count(&subscribedTo).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "channel lookup failed", err))
		return
	}
	isSubscribed, err := a.engine.Exists(ctx, p.ID, channel.ID, toggle.KindChannel)
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "channel lookup failed", err))
		return
	}

	respond(c, http.StatusOK, gin.H{
		"user":            channel,
		"subscribers":     subscribers,
		"subscribedTo":    subscribedTo,
		"isSubscribed":    isSubscribed,
	}, "channel profile")
}

func (a *app) watchHistory(c *gin.Context) {
	p, _ := currentUser(c)
	var events []models.WatchEvent
	err := a.db.Where("user_id = ?", p.ID).
		Preload("Video").Preload("Video.Owner").
		Order("id desc").Limit(50).
		Find(&events).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, events, "watch history")
}

// storeImageField uploads one optional multipart image to the media host.
// Returns (nil, nil) when the field is absent.
func (a *app) storeImageField(c *gin.Context, field string) (*media.Asset, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxImageSize {
		return nil, apperr.New(apperr.Validation, field+" too large (max 5MB)")
	}
	return a.storeUpload(c, fh)
}

func (a *app) storeUpload(c *gin.Context, fh *multipart.FileHeader) (*media.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "upload failed", err)
	}
	defer f.Close()
	asset, err := a.media.Store(c.Request.Context(), f, fh.Filename)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "upload failed", err)
	}
	return asset, nil
}

func (a *app) findUserByLogin(login string) (*models.User, error) {
	var user models.User
	err := a.db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *app) setTokenCookies(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookie, access, int(a.tokens.AccessTTL().Seconds()), "/", "", true, true)
	c.SetCookie(refreshCookie, refresh, int(a.tokens.RefreshTTL().Seconds()), "/", "", true, true)
}

func (a *app) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", true, true)
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
