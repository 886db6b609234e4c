package echoweb

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

const (
	SessionCookieName = "session"
	contextUserKey    = "user"
	audience          = "console"
)

var errInvalidToken = errors.New("invalid session token")

// Claims represents the authorization claims transmitted via the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		IsAdmin: usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(tokenStr, secretKey string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || !claims.VerifyAudience(audience, true) {
		return nil, errInvalidToken
	}
	return claims, nil
}

// sessionMiddleware loads the signed-in admin from the session cookie, if any.
func sessionMiddleware(conf *core.Config, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(ctx)
			}
			claims, err := parseToken(cookie.Value, conf.SecretKey)
			if err != nil {
				clearSessionCookie(ctx)
				return next(ctx)
			}

			usr, err := svc.GetByID(ctx.Request().Context(), core.ParseID(claims.Subject))
			switch {
			case err == nil && usr.IsAdmin():
				ctx.Set(contextUserKey, usr)
			case err == nil || errors.Cause(err) == user.ErrNotFound: // demoted or deleted
				clearSessionCookie(ctx)
			default:
				return errors.Wrap(err, "finding user by ID")
			}
			return next(ctx)
		}
	}
}

// adminMiddleware sends anonymous visitors to the sign-in page.
func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := getContextUser(ctx); ok {
			return next(ctx)
		}
		q := make(url.Values)
		if p := ctx.Request().URL.RequestURI(); p != "/" {
			q.Set("next", p)
		}
		loginURL := "/login"
		if len(q) > 0 {
			loginURL += "?" + q.Encode()
		}
		return ctx.Redirect(http.StatusSeeOther, loginURL)
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func setSessionCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.Server.SessionTTL),
		HttpOnly: true,
		Secure:   strings.HasPrefix(conf.ConsoleBaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext only follows local redirects.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

type (
	authPages struct {
		conf       *core.Config
		svc        *user.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	loginForm struct {
		Values user.Login
		Next   string
		Errors map[string]string
	}
)

func registerAuthPages(e *echo.Echo, opts *Options) {
	p := authPages{
		conf:       opts.Conf,
		svc:        opts.UserSvc,
		validate:   opts.Validate,
		translator: opts.Translator,
	}
	e.GET("/login", p.loginForm)
	e.POST("/login", p.login)
	e.POST("/logout", p.logout)
}

func (p *authPages) loginForm(ctx echo.Context) error {
	if _, ok := getContextUser(ctx); ok {
		return ctx.Redirect(http.StatusSeeOther, safeNext(ctx.QueryParam("next")))
	}
	return render(ctx, http.StatusOK, "login", "Sign in", loginForm{Next: ctx.QueryParam("next")})
}

func (p *authPages) login(ctx echo.Context) error {
	var data user.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	form := loginForm{Values: data, Next: ctx.FormValue("next")}
	form.Values.Password = ""

	if err := data.Validate(p.validate); err != nil {
		fldErrs, ok := formErrors(err, p.translator)
		if !ok {
			return err
		}
		form.Errors = fldErrs
		return render(ctx, http.StatusUnprocessableEntity, "login", "Sign in", form)
	}

	usr, err := p.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if cause := errors.Cause(err); cause == user.ErrInvalidCredentials || cause == user.ErrNotAdmin {
			form.Errors = map[string]string{nonFieldErrors: cause.Error()}
			return render(ctx, http.StatusUnprocessableEntity, "login", "Sign in", form)
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetUserClaims(usr, p.conf), p.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, p.conf, token)
	return ctx.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (p *authPages) logout(ctx echo.Context) error {
	clearSessionCookie(ctx)
	return redirectMessage(ctx, "/login", "You have been signed out.")
}
