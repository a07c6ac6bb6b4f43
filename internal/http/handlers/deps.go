package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopkart/internal/config"
	"shopkart/internal/repos"
	"shopkart/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	ReviewHandler  *ReviewHandler
	ProfileHandler *ProfileHandler
	AdminHandler   *AdminHandler
	V1Handler      *V1Handler

	Auth    *services.AuthService
	ApiKeys *repos.ApiKeyRepo
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	keyRepo := repos.NewApiKeyRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	catalogSvc := services.NewCatalogService(prodRepo, reviewRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo, userRepo)
	reviewSvc := services.NewReviewService(reviewRepo, prodRepo)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: authSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		OrderHandler:   &OrderHandler{Orders: orderSvc},
		ReviewHandler:  &ReviewHandler{Reviews: reviewSvc},
		ProfileHandler: &ProfileHandler{Users: userRepo, Reviews: reviewRepo},
		AdminHandler:   &AdminHandler{Prods: prodRepo, Orders: orderRepo, Users: userRepo, Reviews: reviewRepo},
		V1Handler:      &V1Handler{Catalog: catalogSvc, Orders: orderSvc},
		Auth:           authSvc,
		ApiKeys:        keyRepo,
	}
}
