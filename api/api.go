package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/dibadokht/kelaasor-final/api/background"
	"github.com/dibadokht/kelaasor-final/api/middleware"
	"github.com/dibadokht/kelaasor-final/api/web"
	"github.com/dibadokht/kelaasor-final/core/auth"
	"github.com/dibadokht/kelaasor-final/core/cart"
	"github.com/dibadokht/kelaasor-final/core/course"
	"github.com/dibadokht/kelaasor-final/core/enrollment"
	"github.com/dibadokht/kelaasor-final/core/lesson"
	"github.com/dibadokht/kelaasor-final/core/order"
	"github.com/dibadokht/kelaasor-final/core/user"
	"github.com/dibadokht/kelaasor-final/events"
	"github.com/dibadokht/kelaasor-final/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Background       *background.Background
	Publisher        events.Publisher
	LoginLimiter     *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	identify := auth.Identify(cfg.Session)
	admin := auth.Admin(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session, cfg.LoginLimiter))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/current", user.HandleUpdateCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/courses/owned", course.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{course_id}/sections", lesson.HandleListSections(cfg.DB))
	a.Handle(http.MethodGet, "/courses/{course_id}/lessons", lesson.HandleListByCourse(cfg.DB), identify)
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/courses/{id}", course.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodPost, "/sections", lesson.HandleCreateSection(cfg.DB), admin)
	a.Handle(http.MethodGet, "/lessons/{id}", lesson.HandleShow(cfg.DB), identify)
	a.Handle(http.MethodPost, "/lessons", lesson.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/lessons/{id}", lesson.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/enrollments", enrollment.HandleListMine(cfg.DB), authen)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.DB), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart/items/{course_id}", cart.HandleDeleteItem(cfg.DB), authen)

	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/orders", order.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/orders/{id}/pay", order.HandlePay(cfg.DB, cfg.Publisher, cfg.Background), authen)
	a.Handle(http.MethodPost, "/orders/{id}/cancel", order.HandleCancel(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
