package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellora/client-go/config"
	"github.com/sellora/client-go/internal/storage"
)

func setupClientTest(t *testing.T, register func(*gin.Engine)) (*Client, *storage.Memory) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	kv := storage.NewMemory()
	client := NewClient(
		config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		config.TenantConfig{Header: "X-Store-ID", QueryParam: "store"},
		kv,
	)
	return client, kv
}

func TestClient_AttachesBearerAndTenantHeaders(t *testing.T) {
	var gotAuth, gotTenant string
	client, kv := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/ping", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			gotTenant = c.GetHeader("X-Store-ID")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	})

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, storage.KeyToken, "tok-123"))
	require.NoError(t, kv.Set(ctx, storage.KeyStoreID, "store-7"))

	require.NoError(t, client.Get(ctx, "/ping", nil, nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "store-7", gotTenant)
}

func TestClient_NoHeadersWhenNothingCached(t *testing.T) {
	var gotAuth, gotTenant string
	client, _ := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/ping", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			gotTenant = c.GetHeader("X-Store-ID")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	})

	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))
	assert.Empty(t, gotAuth)
	assert.Empty(t, gotTenant)
}

func TestClient_NormalizesErrorResponse(t *testing.T) {
	client, _ := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/bad", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "VALIDATION_INVALID_INPUT",
				"message": "name is required",
			})
		})
	})

	err := client.Get(context.Background(), "/bad", nil, nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", apiErr.Code)
	assert.Equal(t, "name is required", apiErr.Message)
	assert.True(t, apiErr.IsValidation())
	assert.False(t, apiErr.IsAuth())
}

func TestClient_GenericMessageWhenBodyHasNone(t *testing.T) {
	client, _ := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/boom", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "<html>oops</html>")
		})
	})

	err := client.Get(context.Background(), "/boom", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, GenericMessage, apiErr.Message)
}

func TestClient_TransportFailureUsesStatusZero(t *testing.T) {
	kv := storage.NewMemory()
	client := NewClient(
		// Reserved TEST-NET address: the request never reaches a server.
		config.APIConfig{BaseURL: "http://192.0.2.1:1", Timeout: 200 * time.Millisecond},
		config.TenantConfig{Header: "X-Store-ID"},
		kv,
	)

	err := client.Get(context.Background(), "/ping", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsTransport())
	assert.Equal(t, 0, apiErr.Status)
}

func TestClient_UnauthorizedClearsIdentityAndFiresHook(t *testing.T) {
	client, kv := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/secure", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "token expired"})
		})
	})

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, storage.KeyToken, "stale"))
	require.NoError(t, kv.Set(ctx, storage.KeyPrincipal, `{"id":"u1"}`))
	require.NoError(t, kv.Set(ctx, "admin_token", "legacy"))

	hookCalls := 0
	client.OnUnauthorized(func() { hookCalls++ })

	err := client.Get(ctx, "/secure", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuth())

	assert.Equal(t, 1, hookCalls)
	for _, key := range storage.IdentityKeys {
		_, ok, _ := kv.Get(ctx, key)
		assert.False(t, ok, "identity key %q should be cleared", key)
	}
}

func TestClient_SkipAuthPolicyLeavesIdentityAlone(t *testing.T) {
	client, kv := setupClientTest(t, func(r *gin.Engine) {
		r.POST("/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		})
	})

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, storage.KeyToken, "existing"))

	hookCalls := 0
	client.OnUnauthorized(func() { hookCalls++ })

	err := client.Post(ctx, "/auth/login", gin.H{"email": "a@b.c"}, nil, SkipAuthPolicy())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid email or password", apiErr.Message)

	assert.Zero(t, hookCalls)
	token, ok, _ := kv.Get(ctx, storage.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "existing", token)
}

func TestClient_DecodesPaginationEnvelope(t *testing.T) {
	client, _ := setupClientTest(t, func(r *gin.Engine) {
		r.GET("/things", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"page":        2,
				"total_pages": 5,
				"things":      []gin.H{{"id": "a"}, {"id": "b"}},
			})
		})
	})

	var out struct {
		Page
		Things []struct {
			ID string `json:"id"`
		} `json:"things"`
	}
	require.NoError(t, client.Get(context.Background(), "/things", nil, &out))
	assert.Equal(t, 2, out.Page.Page)
	assert.Equal(t, 5, out.TotalPages)
	assert.Len(t, out.Things, 2)
}
