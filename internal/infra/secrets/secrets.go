package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/domain/secrets"
)

var safeID = regexp.MustCompile(`^[A-Za-z0-9/_+=.@-]+$`)

func checkID(id string) error {
	if !safeID.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid secret id %q", id)
	}
	return nil
}

// FileStore reads <dir>/<id>.json. The file holds the secret string.
type FileStore struct {
	Dir string
}

func (s FileStore) GetSecretValue(_ context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(id)+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", secrets.ErrNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ObjectReader is the part of the object store the ObjectStore secret backend needs.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectStore reads secrets from s3://<bucket>/<prefix>/<id>.json.
type ObjectStore struct {
	Objects ObjectReader
	Bucket  string
	Prefix  string
}

func (s ObjectStore) GetSecretValue(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	key := id + ".json"
	if p := strings.Trim(s.Prefix, "/"); p != "" {
		key = p + "/" + key
	}
	b, err := s.Objects.ReadObject(ctx, s.Bucket, key)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", secrets.ErrNotFound, id)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EnvStore reads the secret string from an environment variable derived
// from the id: "scanora/llm-key" -> SCANORA_LLM_KEY. The variable may hold
// the usual {"<id>": "<value>"} document or the bare credential.
type EnvStore struct{}

func EnvName(id string) string {
	return strings.ToUpper(regexp.MustCompile(`[^A-Za-z0-9]+`).ReplaceAllString(id, "_"))
}

func (EnvStore) GetSecretValue(_ context.Context, id string) (string, error) {
	v, ok := os.LookupEnv(EnvName(id))
	if !ok {
		return "", fmt.Errorf("%w: %s (env %s)", secrets.ErrNotFound, id, EnvName(id))
	}
	if strings.HasPrefix(strings.TrimSpace(v), "{") {
		return v, nil
	}
	b, err := json.Marshal(map[string]string{id: v})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Open builds the configured secret backend. objects may be nil unless the
// provider is "object".
func Open(cfg config.SecretsConfig, bucket string, objects ObjectReader, log *zap.Logger) (secrets.Store, error) {
	switch cfg.Provider {
	case "file":
		log.Info("secrets from files", zap.String("dir", cfg.Path))
		return FileStore{Dir: cfg.Path}, nil
	case "object":
		if objects == nil {
			return nil, fmt.Errorf("object secret provider needs an object store")
		}
		log.Info("secrets from object storage", zap.String("bucket", bucket), zap.String("prefix", cfg.ObjectPrefix))
		return ObjectStore{Objects: objects, Bucket: bucket, Prefix: cfg.ObjectPrefix}, nil
	case "env", "":
		return EnvStore{}, nil
	default:
		return nil, fmt.Errorf("unknown secrets provider %q", cfg.Provider)
	}
}
