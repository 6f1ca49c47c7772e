package acme

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/registration"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/infra/storage"
)

type accountUser struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *accountUser) GetEmail() string {
	return u.email
}

func (u *accountUser) GetRegistration() *registration.Resource {
	return u.registration
}

func (u *accountUser) GetPrivateKey() crypto.PrivateKey {
	return u.key
}

// ParseAccountKey decodes a PEM encoded EC or RSA account key.
func ParseAccountKey(pemKey []byte) (crypto.PrivateKey, error) {
	key, err := certcrypto.ParsePEMPrivateKey(pemKey)
	if err != nil {
		return nil, fmt.Errorf("can't parse acme account key, %v", err)
	}
	return key, nil
}

// LoadOrCreateAccountKey reads the account key stored under objectKey and generates
// and stores a new P-256 key when none exists yet.
func LoadOrCreateAccountKey(ctx context.Context, store interfaces.ArtifactStore, objectKey string) (crypto.PrivateKey, bool, error) {
	data, err := store.Get(ctx, objectKey)
	if err == nil {
		key, err := ParseAccountKey(data)
		return key, false, err
	}
	if !errors.Is(err, storage.ErrObjectNotFound) {
		return nil, false, fmt.Errorf("can't load acme account key, %v", err)
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, false, fmt.Errorf("can't generate acme account key, %v", err)
	}
	if err = store.Put(ctx, objectKey, certcrypto.PEMEncode(key)); err != nil {
		return nil, false, fmt.Errorf("can't store acme account key, %v", err)
	}

	slog.Info("generated new acme account key", "object", objectKey)
	return key, true, nil
}
