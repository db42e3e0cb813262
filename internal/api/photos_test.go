package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ilisirali/EA/internal/auth"
	"github.com/ilisirali/EA/internal/domain"
)

// failingGetRepo simulates a repository whose report reads are down.
type failingGetRepo struct {
	*memRepo
	err error
}

func (f *failingGetRepo) Get(context.Context, string) (*domain.Report, error) {
	return nil, f.err
}

func seedPhoto(t *testing.T, repo *memRepo, reportID string) *domain.Photo {
	t.Helper()
	service := domain.NewService(repo, nil)
	photo, err := service.AttachPhoto(context.Background(), reportID, "user-1/"+reportID+"/1-foto.jpg", nil)
	if err != nil {
		t.Fatalf("seed photo: %v", err)
	}
	return photo
}

func TestDeletePhotoOwner(t *testing.T) {
	repo := newMemRepo()
	created := seedReport(t, repo, "owner", "met foto")
	photo := seedPhoto(t, repo, created.ID)
	_, mux := newTestHandler(repo, nil, nil, nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/v1/photos/"+photo.ID, nil),
		claimsWith("owner", auth.ScopeReportsWrite))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("owner delete should succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	if got, _ := repo.GetPhoto(context.Background(), photo.ID); got != nil {
		t.Fatal("photo should be removed")
	}
}

func TestDeletePhotoForeignUserLooksAbsent(t *testing.T) {
	repo := newMemRepo()
	created := seedReport(t, repo, "owner", "met foto")
	photo := seedPhoto(t, repo, created.ID)
	_, mux := newTestHandler(repo, nil, nil, nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/v1/photos/"+photo.ID, nil),
		claimsWith("someone-else", auth.ScopeReportsWrite))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign photo must look absent, got %d", rr.Code)
	}
	if got, _ := repo.GetPhoto(context.Background(), photo.ID); got == nil {
		t.Fatal("photo must survive an unauthorized delete attempt")
	}
}

func TestDeletePhotoFailsClosedOnOwnerLookupError(t *testing.T) {
	inner := newMemRepo()
	created := seedReport(t, inner, "owner", "met foto")
	photo := seedPhoto(t, inner, created.ID)

	repo := &failingGetRepo{memRepo: inner, err: errors.New("db timeout")}
	_, mux := newTestHandler(repo, nil, nil, nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/v1/photos/"+photo.ID, nil),
		claimsWith("someone-else", auth.ScopeReportsWrite))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unverifiable ownership must refuse the delete, got %d", rr.Code)
	}
	if got, _ := inner.GetPhoto(context.Background(), photo.ID); got == nil {
		t.Fatal("photo must survive when ownership cannot be verified")
	}
}

func TestDeleteOrphanedPhotoReference(t *testing.T) {
	repo := newMemRepo()
	if err := repo.AddPhoto(context.Background(), domain.Photo{
		ID:       "orphan-1",
		ReportID: "gone",
		FileURL:  "user-1/gone/1-foto.jpg",
	}); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}
	_, mux := newTestHandler(repo, nil, nil, nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/v1/photos/orphan-1", nil),
		claimsWith("someone-else", auth.ScopeReportsWrite))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("orphaned reference must not be deletable, got %d", rr.Code)
	}
	if got, _ := repo.GetPhoto(context.Background(), "orphan-1"); got == nil {
		t.Fatal("orphaned photo must survive")
	}
}
