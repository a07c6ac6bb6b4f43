package services_test

import (
	"testing"

	"shopkart/internal/repos"
	"shopkart/internal/services"
)

func newReviewService(t *testing.T) (*services.ReviewService, *repos.ReviewRepo) {
	t.Helper()
	db := memdb(t)
	if _, err := db.Exec(`INSERT INTO users(id,email,name) VALUES ('u-2','other@example.com','Other')`); err != nil {
		t.Fatal(err)
	}
	rr := repos.NewReviewRepo(db)
	return services.NewReviewService(rr, repos.NewProductRepo(db)), rr
}

func TestReview_OnePerUserAndProduct(t *testing.T) {
	svc, _ := newReviewService(t)

	if _, err := svc.Create("u-1", "kurta-1", 5, "great fit"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create("u-1", "kurta-1", 3, "changed my mind"); err != services.ErrAlreadyReviewed {
		t.Fatalf("want ErrAlreadyReviewed, got %v", err)
	}
	// a different user may still review the same product
	if _, err := svc.Create("u-2", "kurta-1", 4, ""); err != nil {
		t.Fatal(err)
	}
}

func TestReview_RatingWindow(t *testing.T) {
	svc, _ := newReviewService(t)

	if _, err := svc.Create("u-1", "kurta-1", 0, ""); err != services.ErrBadRating {
		t.Fatalf("want ErrBadRating for 0, got %v", err)
	}
	if _, err := svc.Create("u-1", "kurta-1", 6, ""); err != services.ErrBadRating {
		t.Fatalf("want ErrBadRating for 6, got %v", err)
	}
	if _, err := svc.Create("u-1", "unknown-product", 4, ""); err != services.ErrProductNotFound {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestReview_OwnershipOnUpdateAndDelete(t *testing.T) {
	svc, _ := newReviewService(t)

	rv, err := svc.Create("u-1", "kurta-1", 5, "great")
	if err != nil {
		t.Fatal(err)
	}

	three := 3
	if _, err := svc.Update("u-2", rv.ID, &three, nil); err != services.ErrNotOwner {
		t.Fatalf("want ErrNotOwner on update, got %v", err)
	}
	if err := svc.Delete("u-2", rv.ID); err != services.ErrNotOwner {
		t.Fatalf("want ErrNotOwner on delete, got %v", err)
	}

	updated, err := svc.Update("u-1", rv.ID, &three, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Rating != 3 || updated.Comment != "great" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	if err := svc.Delete("u-1", rv.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete("u-1", rv.ID); err != services.ErrReviewNotFound {
		t.Fatalf("want ErrReviewNotFound after delete, got %v", err)
	}
}

func TestReview_AverageRecomputedOnRead(t *testing.T) {
	svc, _ := newReviewService(t)

	if _, err := svc.Create("u-1", "kurta-1", 5, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create("u-2", "kurta-1", 4, ""); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.ForProduct("kurta-1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalReviews != 2 || sum.AverageRating != 4.5 {
		t.Fatalf("want 2 reviews avg 4.5, got %d avg %v", sum.TotalReviews, sum.AverageRating)
	}

	empty, err := svc.ForProduct("scarf-1")
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalReviews != 0 || empty.AverageRating != 0 {
		t.Fatalf("want empty summary, got %+v", empty)
	}
}
