package service

import (
	"log"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"questdeck_backend/internals/configs"
	userModel "questdeck_backend/internals/features/users/user/model"
	helper "questdeck_backend/internals/helpers"
)

// TokenPair is what every successful sign-in returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a local-credentials account.
func Register(db *gorm.DB, userName, email, password string) (*userModel.UserModel, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := userModel.UserModel{
		UserName: strings.TrimSpace(userName),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusConflict, "Email already registered")
		}
		return nil, err
	}
	log.Printf("[AUTH] registered user %s", user.ID)
	return &user, nil
}

// Login verifies credentials and issues a token pair.
func Login(db *gorm.DB, email, password string) (*userModel.UserModel, *TokenPair, error) {
	var user userModel.UserModel
	err := db.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		// same message as a bad password, do not leak which emails exist
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled")
	}
	if !CheckPassword(user.Password, password) {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}

	pair, err := issuePair(db, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// LoginWithGoogle verifies a Google ID token and signs the matching account
// in, creating it on first sight.
func LoginWithGoogle(db *gorm.DB, idToken string) (*userModel.UserModel, *TokenPair, error) {
	if configs.GoogleClientID == "" {
		return nil, nil, fiber.NewError(fiber.StatusServiceUnavailable, "Google sign-in is not configured")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{configs.GoogleClientID}); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Google token")
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Google token")
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	googleID := claims.Sub
	if email == "" || googleID == "" {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Google token is missing identity claims")
	}

	var user userModel.UserModel
	err = db.First(&user, "google_id = ?", googleID).Error
	if err == gorm.ErrRecordNotFound {
		// link by email if the account already exists, else create it
		err = db.First(&user, "email = ?", email).Error
		if err == gorm.ErrRecordNotFound {
			name := claims.Name
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			user = userModel.UserModel{
				UserName: name,
				Email:    email,
				Password: "-", // no local password for Google accounts
				GoogleID: &googleID,
			}
			if err := db.Create(&user).Error; err != nil {
				return nil, nil, err
			}
			log.Printf("[AUTH] created user %s via Google sign-in", user.ID)
		} else if err != nil {
			return nil, nil, err
		} else {
			if err := db.Model(&user).Update("google_id", googleID).Error; err != nil {
				return nil, nil, err
			}
			user.GoogleID = &googleID
		}
	} else if err != nil {
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled")
	}

	pair, err := issuePair(db, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Refresh rotates a refresh token into a fresh pair.
func Refresh(db *gorm.DB, rawRefresh string) (*TokenPair, error) {
	userID, err := VerifyRefreshToken(db, rawRefresh)
	if err != nil {
		return nil, err
	}

	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unknown user")
	}
	if !user.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled")
	}

	if err := RevokeRefreshToken(db, rawRefresh); err != nil {
		return nil, err
	}
	return issuePair(db, &user)
}

// Logout blacklists the access token and revokes the refresh token.
func Logout(db *gorm.DB, rawAccess, rawRefresh string) error {
	if rawAccess != "" {
		if err := BlacklistAccessToken(db, rawAccess); err != nil {
			return err
		}
	}
	if rawRefresh != "" {
		if err := RevokeRefreshToken(db, rawRefresh); err != nil {
			return err
		}
	}
	return nil
}

func issuePair(db *gorm.DB, user *userModel.UserModel) (*TokenPair, error) {
	access, err := SignAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := SignRefreshToken(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
