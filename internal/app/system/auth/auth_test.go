package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/carehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWithActor_ValidHeader(t *testing.T) {
	want := primitive.NewObjectID()

	var got primitive.ObjectID
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.ActorID(r)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(auth.ActorHeader, want.Hex())
	auth.WithActor(next).ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected actor in context")
	}
	if got != want {
		t.Errorf("actor id: got %s, want %s", got.Hex(), want.Hex())
	}
}

func TestWithActor_MalformedHeader(t *testing.T) {
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = auth.ActorID(r)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(auth.ActorHeader, "not-a-hex-id")
	auth.WithActor(next).ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Error("malformed header should not yield an actor")
	}
}

func TestRequireActor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects missing actor", func(t *testing.T) {
		rec := httptest.NewRecorder()
		auth.RequireActor(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("passes with actor", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := auth.WithTestActor(httptest.NewRequest("GET", "/", nil), primitive.NewObjectID())
		auth.RequireActor(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
		}
	})
}
