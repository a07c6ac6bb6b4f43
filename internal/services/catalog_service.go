package services

import (
	"encoding/json"
	"math"

	"shopkart/internal/domain"
	"shopkart/internal/repos"
)

type CatalogService struct {
	Prods   *repos.ProductRepo
	Reviews *repos.ReviewRepo
}

func NewCatalogService(prods *repos.ProductRepo, reviews *repos.ReviewRepo) *CatalogService {
	return &CatalogService{Prods: prods, Reviews: reviews}
}

// decodeArray turns a stored JSON-array string back into a slice. Bad or
// empty stored values decode to an empty slice rather than failing the read.
func decodeArray(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func (s *CatalogService) view(p domain.Product) (domain.ProductView, error) {
	avg, count, err := s.Reviews.Aggregate(p.ID)
	if err != nil {
		return domain.ProductView{}, err
	}
	return domain.ProductView{
		Product:       p,
		Images:        decodeArray(p.ImagesJSON),
		Sizes:         decodeArray(p.SizesJSON),
		Colors:        decodeArray(p.ColorsJSON),
		AverageRating: round1(avg),
		ReviewCount:   count,
	}, nil
}

type ProductPage struct {
	Products []domain.ProductView `json:"products"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

func (s *CatalogService) List(f repos.Filter) (ProductPage, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	prods, err := s.Prods.List(f)
	if err != nil {
		return ProductPage{}, err
	}
	total, err := s.Prods.Count(f)
	if err != nil {
		return ProductPage{}, err
	}

	views := make([]domain.ProductView, 0, len(prods))
	for _, p := range prods {
		v, err := s.view(p)
		if err != nil {
			return ProductPage{}, err
		}
		views = append(views, v)
	}
	return ProductPage{Products: views, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

type ProductDetail struct {
	domain.ProductView
	Reviews []repos.ReviewRow `json:"reviews"`
}

func (s *CatalogService) Get(id string) (ProductDetail, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		return ProductDetail{}, err
	}
	v, err := s.view(p)
	if err != nil {
		return ProductDetail{}, err
	}
	reviews, err := s.Reviews.ListByProduct(id)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{ProductView: v, Reviews: reviews}, nil
}

// GetView returns the product with decoded fields and rating summary but
// without the review list (the v1 machine surface shape).
func (s *CatalogService) GetView(id string) (domain.ProductView, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		return domain.ProductView{}, err
	}
	return s.view(p)
}
