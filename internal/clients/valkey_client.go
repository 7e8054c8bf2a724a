package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

const VALKEY_SEEN_COMMENTS_KEY = "clean:seen_comments"

// ValkeyClient tracks comment texts the cleaning stage has already merged, so
// repeated runs across part files never duplicate entries. Texts are stored
// hashed to keep member sizes bounded.
type ValkeyClient struct {
	Client valkey.Client
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
		valkeyPassword := os.Getenv("VALKEY_PASSWORD")
		useTLS := os.Getenv("VALKEY_TLS") == "true"

		opts := valkey.ClientOption{
			InitAddress: []string{
				valkeyAddr,
			},
			Password:         valkeyPassword,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}

		if useTLS {
			opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		c := client.Do(ctx, client.B().Ping().Build())
		if c.Error() != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", c.Error()))
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")

		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

func hashComment(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// MarkSeen records a comment text as merged.
func (vc *ValkeyClient) MarkSeen(ctx context.Context, text string) error {
	res := vc.doWithRetry(ctx,
		vc.Client.B().Sadd().Key(VALKEY_SEEN_COMMENTS_KEY).Member(hashComment(text)).Build(), 3)
	if err := res.Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] SADD failed: %w", err)
	}
	return nil
}

// IsSeen reports whether a comment text was merged before. Errors count as
// unseen so a flaky cache degrades to duplicate suppression by the file merge.
func (vc *ValkeyClient) IsSeen(ctx context.Context, text string) bool {
	res := vc.doWithRetry(ctx,
		vc.Client.B().Sismember().Key(VALKEY_SEEN_COMMENTS_KEY).Member(hashComment(text)).Build(), 3)
	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

func (vc *ValkeyClient) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}
