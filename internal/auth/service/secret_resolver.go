package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsSecretResolver decrypts the signing secret with a KMS keeper when a key URI is configured.
type kmsSecretResolver struct {
	keyURI string
}

// NewSecretResolver creates a SecretResolver.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
// With an empty keyURI the secret is returned unchanged.
func NewSecretResolver(keyURI string) SecretResolver {
	return &kmsSecretResolver{keyURI: keyURI}
}

// Resolve expects base64 ciphertext when a key URI is configured.
func (r *kmsSecretResolver) Resolve(ctx context.Context, secret string) (string, error) {
	if r.keyURI == "" {
		return secret, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted secret: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, r.keyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret: %w", err)
	}

	return string(plaintext), nil
}
