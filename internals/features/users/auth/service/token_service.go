package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"questdeck_backend/internals/configs"
	"questdeck_backend/internals/features/users/auth/model"
	helper "questdeck_backend/internals/helpers"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// HashToken is how tokens are stored server side. Raw tokens never touch
// the database.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// SignAccessToken issues the short-lived access JWT carrying id + role.
func SignAccessToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(AccessTokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(configs.JWTSecret))
}

// SignRefreshToken issues the long-lived refresh JWT and persists its hash
// so it can be rotated and revoked.
func SignRefreshToken(db *gorm.DB, userID uuid.UUID) (string, error) {
	now := time.Now()
	exp := now.Add(RefreshTokenTTL)
	claims := jwt.MapClaims{
		"id":  userID.String(),
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(configs.JWTRefreshSecret))
	if err != nil {
		return "", err
	}

	entry := model.RefreshTokenModel{
		RefreshTokenUserID:    userID,
		RefreshTokenHash:      HashToken(raw),
		RefreshTokenExpiresAt: exp,
	}
	if err := db.Create(&entry).Error; err != nil {
		return "", err
	}
	return raw, nil
}

// VerifyRefreshToken checks signature, typ claim and the stored hash, and
// returns the owning user id.
func VerifyRefreshToken(db *gorm.DB, raw string) (uuid.UUID, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(configs.JWTRefreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid refresh token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid refresh token")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Not a refresh token")
	}
	idStr, _ := claims["id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid refresh token")
	}

	var stored model.RefreshTokenModel
	if err := db.First(&stored, "refresh_token_hash = ?", HashToken(raw)).Error; err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Refresh token revoked")
	}
	if time.Now().After(stored.RefreshTokenExpiresAt) {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Refresh token expired")
	}
	return userID, nil
}

// RevokeRefreshToken deletes the stored hash. Unknown tokens are a no-op.
func RevokeRefreshToken(db *gorm.DB, raw string) error {
	return db.Where("refresh_token_hash = ?", HashToken(raw)).
		Delete(&model.RefreshTokenModel{}).Error
}

// BlacklistAccessToken revokes an access token until its natural expiry.
func BlacklistAccessToken(db *gorm.DB, raw string) error {
	exp := time.Now().Add(AccessTokenTTL)
	if tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{}); err == nil {
		if claims, ok := tok.Claims.(jwt.MapClaims); ok {
			if v, ok := claims["exp"].(float64); ok {
				exp = time.Unix(int64(v), 0)
			}
		}
	}
	entry := model.TokenBlacklistModel{
		TokenBlacklistHash:      HashToken(raw),
		TokenBlacklistExpiresAt: exp,
	}
	err := db.Create(&entry).Error
	if err != nil && helper.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// IsBlacklisted is wired into the auth middleware.
func IsBlacklisted(db *gorm.DB) func(rawToken string) (bool, error) {
	return func(raw string) (bool, error) {
		var n int64
		err := db.Model(&model.TokenBlacklistModel{}).
			Where("token_blacklist_hash = ? AND token_blacklist_expires_at > ?", HashToken(raw), time.Now()).
			Count(&n).Error
		return n > 0, err
	}
}
