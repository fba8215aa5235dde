package echoapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-roster/core"
)

const (
	tokenContextKey = "userToken"
	tokenAudience   = "Academia"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
}

// authenticator checks the single operator account configured in server.username / server.password.
type authenticator struct {
	appName    string
	username   string
	pwdHash    []byte
	expiration time.Duration
	jwtConfig  middleware.JWTConfig
}

func newAuthenticator(conf *core.Config) (*authenticator, error) {
	cost := bcrypt.DefaultCost
	if conf.TestMode {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(conf.Server.Password), cost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing operator password")
	}
	return &authenticator{
		appName:    conf.AppName,
		username:   core.CleanString(conf.Server.Username, true /* lower */),
		pwdHash:    hash,
		expiration: conf.Server.JWTExpirationDelta,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.Server.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    tokenContextKey,
			Claims:        new(Claims),
		},
	}, nil
}

func (a *authenticator) claimsFor(username string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   username,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(a.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: username,
	}
}

func (a *authenticator) authenticate(uname, pwd string) (*Claims, error) {
	validUser := subtle.ConstantTimeCompare([]byte(uname), []byte(a.username)) == 1
	if err := bcrypt.CompareHashAndPassword(a.pwdHash, []byte(pwd)); err != nil || !validUser {
		return nil, errAuthenticationFailed
	}
	return a.claimsFor(uname), nil
}

// generateToken generates a signed JWT token string representing the Claims.
func (a *authenticator) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authApi struct {
	auth     *authenticator
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, auth *authenticator, validate *validator.Validate) {
	api := authApi{auth: auth, validate: validate}
	g.POST("/auth/login", api.login)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.auth.authenticate(data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.generateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
