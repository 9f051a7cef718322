// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	accountctrl "github.com/flizi/authcenter/internal/http/controllers/account"
	authctrl "github.com/flizi/authcenter/internal/http/controllers/auth"
	healthctrl "github.com/flizi/authcenter/internal/http/controllers/health"
	"github.com/flizi/authcenter/internal/http/middlewares"
	"github.com/flizi/authcenter/internal/security/token"
)

// Deps are the wired controllers.
type Deps struct {
	Login   *authctrl.LoginController
	Social  *authctrl.SocialController
	Account *accountctrl.Controller
	Signer  *token.Signer
}

// New builds the router with the standard middleware chain.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthctrl.NewController().Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", d.Login.Login)
		r.Post("/login/social", d.Social.Login)
		r.Get("/social/{method}/start", d.Social.Start)
		r.Post("/signup", d.Account.Signup)

		r.Route("/bind", func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return middlewares.RequireSession(d.Signer)(next)
			})
			r.Post("/sms", d.Account.BindPhone)
			r.Post("/wx-mp", d.Account.BindWechatMP)
			r.Post("/wx-open", d.Account.BindWechatOpen)
		})
	})

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
	)
}
