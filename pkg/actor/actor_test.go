package actor_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, actor.System, actor.Name(context.Background()))

	ctx := actor.WithActor(context.Background(), &actor.Actor{Name: "Maja"})
	assert.Equal(t, "Maja", actor.Name(ctx))
}

func TestMiddleware(t *testing.T) {
	var got string
	h := actor.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = actor.Name(r.Context())
	}))

	tests := []struct {
		header string
		want   string
	}{
		{"  Maja Svensson ", "Maja Svensson"},
		{"", actor.System},
		{"   ", actor.System},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set(actor.Header, tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
