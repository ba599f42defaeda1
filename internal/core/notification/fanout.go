package notification

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Audience は受信者の選択規則です。
// ExcludeActor はロールで選ばれた受信者からのみ除外され、Subject には常に届きます。
type Audience struct {
	Managers     bool
	Admins       bool
	Subject      string
	ExcludeActor string
}

// Event は確定した遷移について配信する通知内容です。
type Event struct {
	Type     Type
	Title    string
	Message  string
	Payload  map[string]any
	Audience Audience
}

// Options は FanOut の動作設定です。
type Options struct {
	// Async が true の場合、Publish は呼び出し元を待たせずに配信します。
	Async       bool
	Concurrency int
	Timeout     time.Duration
	Clock       Clock
}

// FanOut は 1 つのイベントを受信者ごとの通知として書き込みます。
// 配信は 1 回だけ試み、失敗はログに残して呼び出し元へは返しません。
type FanOut struct {
	repo     Repository
	resolver RecipientResolver
	logger   zerolog.Logger
	opts     Options
	wg       sync.WaitGroup
}

// NewFanOut は FanOut を生成します。
func NewFanOut(repo Repository, resolver RecipientResolver, logger zerolog.Logger, opts Options) *FanOut {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &FanOut{repo: repo, resolver: resolver, logger: logger, opts: opts}
}

// Publish はイベントをベストエフォートで配信します。
func (f *FanOut) Publish(ctx context.Context, ev Event) {
	if !f.opts.Async {
		f.deliverAndLog(ctx, ev)
		return
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.deliverAndLog(context.WithoutCancel(ctx), ev)
	}()
}

// Wait は非同期配信中の通知が全て終わるまで待ちます。
func (f *FanOut) Wait() {
	f.wg.Wait()
}

func (f *FanOut) deliverAndLog(ctx context.Context, ev Event) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	delivered, err := f.Deliver(ctx, ev)
	if err != nil {
		f.logger.Warn().Err(err).Str("type", string(ev.Type)).Int("delivered", delivered).Msg("notification: fan-out incomplete")
		return
	}
	f.logger.Debug().Str("type", string(ev.Type)).Int("delivered", delivered).Msg("notification: fan-out done")
}

// Deliver はイベントを同期的に配信し、書き込めた件数と失敗をまとめたエラーを返します。
// 受信者の解決に一部失敗しても、解決できた受信者には配信します。
func (f *FanOut) Deliver(ctx context.Context, ev Event) (int, error) {
	recipients, resolveErr := f.Recipients(ctx, ev.Audience)

	var (
		mu    sync.Mutex
		errs  *multierror.Error
		count int
		group errgroup.Group
		now   = f.opts.Clock.Now()
	)
	if resolveErr != nil {
		errs = multierror.Append(errs, resolveErr)
	}

	group.SetLimit(f.opts.Concurrency)
	for _, recipientID := range recipients {
		n := compose(recipientID, ev, now)
		group.Go(func() error {
			_, err := f.repo.Create(ctx, n)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("recipient %s: %w", n.RecipientID, err))
				return nil
			}
			count++
			return nil
		})
	}
	_ = group.Wait()

	return count, errs.ErrorOrNil()
}

// Recipients は規則に従って重複のない受信者 ID を返します。
func (f *FanOut) Recipients(ctx context.Context, a Audience) ([]string, error) {
	roles := mapset.NewThreadUnsafeSet[string]()
	var errs *multierror.Error

	if a.Managers {
		ids, err := f.resolver.Managers(ctx)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("resolve managers: %w", err))
		}
		roles.Append(ids...)
	}
	if a.Admins {
		ids, err := f.resolver.Admins(ctx)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("resolve admins: %w", err))
		}
		roles.Append(ids...)
	}

	if actor := strings.TrimSpace(a.ExcludeActor); actor != "" {
		roles.Remove(actor)
	}
	if subject := strings.TrimSpace(a.Subject); subject != "" {
		roles.Add(subject)
	}
	roles.Remove("")

	out := roles.ToSlice()
	slices.Sort(out)
	return out, errs.ErrorOrNil()
}

func compose(recipientID string, ev Event, now time.Time) *Notification {
	payload := make(map[string]any, len(ev.Payload))
	for k, v := range ev.Payload {
		payload[k] = v
	}
	return &Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Type:        ev.Type,
		Title:       ev.Title,
		Message:     ev.Message,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
