// Package auth provides shared-key authentication for the condition service.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey is the request metadata entry carrying the API key.
const MetadataKey = "x-api-key"

// healthPrefix marks methods that stay reachable without a key.
const healthPrefix = "/grpc.health.v1.Health/"

// Authenticator checks presented keys against one configured key.
// Keys are compared as HMAC-SHA256 digests under a per-process secret so the
// comparison is constant-time regardless of key length.
type Authenticator struct {
	secret []byte
	digest []byte
}

// NewAuthenticator creates an authenticator accepting apiKey.
func NewAuthenticator(apiKey string) (*Authenticator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key cannot be empty")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC secret: %w", err)
	}
	return &Authenticator{
		secret: secret,
		digest: computeHMAC(secret, apiKey),
	}, nil
}

// Authenticate validates a presented key.
func (a *Authenticator) Authenticate(apiKey string) error {
	if apiKey == "" {
		return ErrMissingKey
	}
	if !hmac.Equal(a.digest, computeHMAC(a.secret, apiKey)) {
		return ErrInvalidKey
	}
	return nil
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Health checks pass through unauthenticated.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		var key string
		if keys := md.Get(MetadataKey); len(keys) > 0 {
			key = keys[0]
		}
		if err := a.Authenticate(key); err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ctx, req)
	}
}

func computeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}
