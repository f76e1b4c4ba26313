package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/handlers"
	"github.com/ray-remotestate/storefront/middlewares"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(b *handlers.Backend, secret []byte, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger(log))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.HandleFunc("/uploads/{id}", b.ServeUpload).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", b.Login).Methods("POST")
	api.HandleFunc("/auth/register-seller", b.RegisterSeller).Methods("POST")

	authRoutes := api.NewRoute().Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware(secret))

	authRoutes.HandleFunc("/users/me", b.GetMe).Methods("GET")
	authRoutes.HandleFunc("/users/me", b.UpdateMe).Methods("PUT")
	authRoutes.HandleFunc("/users/me/password", b.ChangePassword).Methods("PUT")
	authRoutes.HandleFunc("/menu-item-reviews/menu/{id}", b.MenuItemReviews).Methods("GET")
	authRoutes.HandleFunc("/upload", b.Upload).Methods("POST")

	// seller only
	seller := authRoutes.NewRoute().Subrouter()
	seller.Use(middlewares.RoleBasedMiddleware(handlers.RoleSeller))

	seller.HandleFunc("/menu-items/me", b.MyMenuItems).Methods("GET")
	seller.HandleFunc("/menu-items", b.CreateMenuItem).Methods("POST")
	seller.HandleFunc("/menu-items/{id}", b.UpdateMenuItem).Methods("PUT")
	seller.HandleFunc("/menu-items/{id}", b.DeleteMenuItem).Methods("DELETE")

	seller.HandleFunc("/sellers/me", b.GetSeller).Methods("GET")
	seller.HandleFunc("/sellers/me", b.UpdateSeller).Methods("PUT")
	seller.HandleFunc("/sellers/{id}", b.GetSeller).Methods("GET")
	seller.HandleFunc("/sellers/{id}", b.UpdateSeller).Methods("PUT")

	seller.HandleFunc("/orders/seller/me", b.MyOrders).Methods("GET")
	seller.HandleFunc("/orders/{id}/{action:ready|accept|cancel|complete}", b.OrderAction).Methods("PUT")

	seller.HandleFunc("/withdrawals/mine", b.MyWithdrawals).Methods("GET")
	seller.HandleFunc("/withdrawals", b.RequestWithdrawal).Methods("POST")

	return &Server{
		Router: router,
		server: &http.Server{
			Handler:           router,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
		},
	}
}

func (svr *Server) Run(addr string) error {
	svr.server.Addr = addr
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
