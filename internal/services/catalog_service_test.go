package services_test

import (
	"reflect"
	"testing"

	"shopkart/internal/repos"
	"shopkart/internal/services"
)

func TestCatalog_SerializedFieldsDecodeOnEveryRead(t *testing.T) {
	db := memdb(t)
	if _, err := db.Exec(`
		UPDATE products SET images_json='["a.png","b.png"]', sizes_json='["S","M"]', colors_json='["red"]'
		WHERE id='kurta-1'
	`); err != nil {
		t.Fatal(err)
	}
	svc := services.NewCatalogService(repos.NewProductRepo(db), repos.NewReviewRepo(db))

	detail, err := svc.Get("kurta-1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(detail.Images, []string{"a.png", "b.png"}) {
		t.Fatalf("images should decode to the stored array, got %v", detail.Images)
	}
	if !reflect.DeepEqual(detail.Sizes, []string{"S", "M"}) || !reflect.DeepEqual(detail.Colors, []string{"red"}) {
		t.Fatalf("sizes/colors decode wrong: %v %v", detail.Sizes, detail.Colors)
	}

	// list path decodes too
	page, err := svc.List(repos.Filter{Search: "silk", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Products) != 1 || !reflect.DeepEqual(page.Products[0].Images, []string{"a.png", "b.png"}) {
		t.Fatalf("list decode wrong: %+v", page.Products)
	}
}

func TestCatalog_FiltersAndSort(t *testing.T) {
	db := memdb(t)
	svc := services.NewCatalogService(repos.NewProductRepo(db), repos.NewReviewRepo(db))

	page, err := svc.List(repos.Filter{Category: "accessories", SortBy: "price-asc", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Products) != 2 {
		t.Fatalf("want 2 accessories, got %+v", page)
	}
	if page.Products[0].Price > page.Products[1].Price {
		t.Fatalf("price-asc ordering broken: %d before %d", page.Products[0].Price, page.Products[1].Price)
	}

	page, err = svc.List(repos.Filter{MinPrice: 400, MaxPrice: 600, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Products[0].ID != "scarf-1" {
		t.Fatalf("price range filter wrong: %+v", page.Products)
	}
}

func TestCatalog_RatingAggregateOnRead(t *testing.T) {
	db := memdb(t)
	if _, err := db.Exec(`
		INSERT INTO reviews(id,user_id,product_id,rating) VALUES
		  ('r-1','u-1','kurta-1',5),
		  ('r-2','u-x','kurta-1',2)
	`); err != nil {
		t.Fatal(err)
	}
	svc := services.NewCatalogService(repos.NewProductRepo(db), repos.NewReviewRepo(db))

	v, err := svc.GetView("kurta-1")
	if err != nil {
		t.Fatal(err)
	}
	if v.ReviewCount != 2 || v.AverageRating != 3.5 {
		t.Fatalf("want count 2 avg 3.5, got %d / %v", v.ReviewCount, v.AverageRating)
	}
}
