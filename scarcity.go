package scarcity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/xraph/scarcity/event"
	"github.com/xraph/scarcity/plugin"
	"github.com/xraph/scarcity/progression"
	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

// Ledger is the summoner asset engine.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// mu serializes mutations so every check runs against the state the
	// following write will replace.
	mu sync.Mutex

	// Configuration
	admin       common.Address
	baseURI     string
	hasURI      bool
	skipMigrate bool

	// seq numbers committed events; guarded by mu.
	seq uint64
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithAdmin sets the admin identity used when the store holds none yet.
func WithAdmin(admin common.Address) Option {
	return func(l *Ledger) {
		l.admin = admin
	}
}

// WithBaseURI sets the metadata base URI used when the store holds none yet.
func WithBaseURI(uri string) Option {
	return func(l *Ledger) {
		l.baseURI = uri
		l.hasURI = true
	}
}

// WithoutMigrate skips store migration on Start. The schema must already
// exist.
func WithoutMigrate() Option {
	return func(l *Ledger) {
		l.skipMigrate = true
	}
}

// Start migrates the store and bootstraps the settings record.
func (l *Ledger) Start(ctx context.Context) error {
	if !l.skipMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
	}

	if err := l.bootstrapSettings(ctx); err != nil {
		return err
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	cfg, err := l.getSettings(ctx)
	if err != nil {
		return err
	}

	l.logger.Info("scarcity started",
		"admin", cfg.Admin.Hex(),
		"base_uri", cfg.BaseURI,
		"plugins", l.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// bootstrapSettings persists the configured admin on first start. A
// persisted admin always wins over configuration.
func (l *Ledger) bootstrapSettings(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, err := l.store.GetSettings(ctx)
	switch {
	case err == nil:
		if l.admin != (common.Address{}) && cfg.Admin != l.admin {
			l.logger.Warn("configured admin ignored, persisted admin kept",
				"configured", l.admin.Hex(),
				"persisted", cfg.Admin.Hex(),
			)
		}
		if l.hasURI && cfg.BaseURI != l.baseURI {
			l.logger.Debug("configured base uri ignored, persisted value kept",
				"configured", l.baseURI,
				"persisted", cfg.BaseURI,
			)
		}
		return nil
	case !errors.Is(err, ErrSettingsNotFound):
		return err
	}

	if l.admin == (common.Address{}) {
		return ErrNoAdmin
	}

	return l.store.SaveSettings(ctx, &settings.Settings{
		Admin:     l.admin,
		BaseURI:   l.baseURI,
		UpdatedAt: time.Now().UTC(),
	})
}

func (l *Ledger) getSettings(ctx context.Context) (*settings.Settings, error) {
	cfg, err := l.store.GetSettings(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		return &settings.Settings{Admin: l.admin, BaseURI: l.baseURI}, nil
	}
	return cfg, err
}

// ──────────────────────────────────────────────────
// Summoning
// ──────────────────────────────────────────────────

// Summon mints a new summoner of the given kind to the caller. The caller
// becomes both owner and minter. It returns the new summoner's id.
func (l *Ledger) Summon(ctx context.Context, kind uint64) (uint64, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	nextID, err := l.store.NextSummonerID(ctx)
	if err != nil {
		l.mu.Unlock()
		return 0, err
	}
	// The counter after this mint must still fit.
	if nextID == math.MaxUint64 {
		l.mu.Unlock()
		return 0, fmt.Errorf("%w: summoner id counter", ErrOverflow)
	}

	s := &summoner.Summoner{
		Entity: types.NewEntity(),
		ID:     nextID,
		Kind:   kind,
		XP:     types.ZeroXP(),
		Owner:  caller,
		Minter: caller,
	}
	err = l.store.CreateSummoner(ctx, s)
	evt := l.sequence(err, event.NewSummoned(s.ID, kind, caller))
	l.mu.Unlock()
	if err != nil {
		return 0, err
	}

	l.logger.Debug("summoner minted",
		"summoner_id", s.ID,
		"kind", kind,
		"minter", caller.Hex(),
	)

	l.plugins.EmitSummoned(ctx, evt)
	return s.ID, nil
}

// ──────────────────────────────────────────────────
// Transfers and approvals
// ──────────────────────────────────────────────────

// Transfer moves a summoner from its current owner to another identity.
// from must be the current owner; the caller must be the owner, the
// summoner's approved address or an operator of the owner. The single
// approval is cleared and the minter is left untouched.
func (l *Ledger) Transfer(ctx context.Context, summonerID uint64, from, to common.Address) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.mu.Lock()
	s, err := l.store.GetSummoner(ctx, summonerID)
	if err != nil {
		l.mu.Unlock()
		return err
	}

	authorized, err := l.canManage(ctx, s, caller)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if !authorized {
		l.mu.Unlock()
		l.plugins.EmitUnauthorized(ctx, "Transfer", caller, ErrNotOwner)
		return ErrNotOwner
	}
	if s.Owner != from {
		l.mu.Unlock()
		return ErrIncorrectOwner
	}

	err = l.store.TransferSummoner(ctx, summonerID, from, to)
	evt := l.sequence(err, event.NewTransfer(summonerID, from, to, caller))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.logger.Debug("summoner transferred",
		"summoner_id", summonerID,
		"from", from.Hex(),
		"to", to.Hex(),
	)

	l.plugins.EmitTransferred(ctx, evt)
	return nil
}

// Approve sets the single delegate allowed to transfer a summoner. Passing
// the zero address clears it. Only the owner or one of its operators may
// approve.
func (l *Ledger) Approve(ctx context.Context, summonerID uint64, approved common.Address) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	s, err := l.store.GetSummoner(ctx, summonerID)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if approved == s.Owner {
		l.mu.Unlock()
		return ErrApproveToOwner
	}

	if caller != s.Owner {
		isOp, opErr := l.store.IsOperator(ctx, s.Owner, caller)
		if opErr != nil {
			l.mu.Unlock()
			return opErr
		}
		if !isOp {
			l.mu.Unlock()
			l.plugins.EmitUnauthorized(ctx, "Approve", caller, ErrNotOwner)
			return ErrNotOwner
		}
	}

	err = l.store.SetApproved(ctx, summonerID, s.Owner, approved)
	evt := l.sequence(err, event.NewApproval(summonerID, s.Owner, approved, caller))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.plugins.EmitApproval(ctx, evt)
	return nil
}

// GetApproved returns the summoner's single delegate, or the zero address.
func (l *Ledger) GetApproved(ctx context.Context, summonerID uint64) (common.Address, error) {
	s, err := l.store.GetSummoner(ctx, summonerID)
	if err != nil {
		return common.Address{}, err
	}
	return s.Approved, nil
}

// SetApprovalForAll grants or revokes operator rights over every summoner
// the caller owns, now or later.
func (l *Ledger) SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if operator == caller {
		return ErrApproveToCaller
	}
	if operator == (common.Address{}) {
		return ValidationError{Field: "operator", Message: "zero address"}
	}

	l.mu.Lock()
	err = l.store.SetOperator(ctx, caller, operator, approved)
	evt := l.sequence(err, event.NewApprovalForAll(caller, operator, approved))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.plugins.EmitApprovalForAll(ctx, evt)
	return nil
}

// IsApprovedForAll reports whether operator manages all of owner's summoners.
func (l *Ledger) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return l.store.IsOperator(ctx, owner, operator)
}

// canManage reports whether caller may transfer s.
func (l *Ledger) canManage(ctx context.Context, s *summoner.Summoner, caller common.Address) (bool, error) {
	if caller == s.Owner || (s.HasApproval() && caller == s.Approved) {
		return true, nil
	}
	return l.store.IsOperator(ctx, s.Owner, caller)
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// OwnerOf returns the current owner of a summoner.
func (l *Ledger) OwnerOf(ctx context.Context, summonerID uint64) (common.Address, error) {
	s, err := l.store.GetSummoner(ctx, summonerID)
	if err != nil {
		return common.Address{}, err
	}
	return s.Owner, nil
}

// MinterOf returns the identity that summoned a summoner.
func (l *Ledger) MinterOf(ctx context.Context, summonerID uint64) (common.Address, error) {
	s, err := l.store.GetSummoner(ctx, summonerID)
	if err != nil {
		return common.Address{}, err
	}
	return s.Minter, nil
}

// GetSummoner returns the full summoner record.
func (l *Ledger) GetSummoner(ctx context.Context, summonerID uint64) (*summoner.Summoner, error) {
	return l.store.GetSummoner(ctx, summonerID)
}

// ListSummoners returns summoners matching opts in id order.
func (l *Ledger) ListSummoners(ctx context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error) {
	return l.store.ListSummoners(ctx, opts)
}

// BalanceOf returns how many summoners owner holds.
func (l *Ledger) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	if owner == (common.Address{}) {
		return 0, ValidationError{Field: "owner", Message: "zero address"}
	}
	return l.store.CountByOwner(ctx, owner)
}

// NextID returns the id the next summon will assign.
func (l *Ledger) NextID(ctx context.Context) (uint64, error) {
	return l.store.NextSummonerID(ctx)
}

// TotalSupply returns the number of summoners ever minted.
func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	return l.store.NextSummonerID(ctx)
}

// XPRequired returns the cumulative XP needed to reach level.
func (l *Ledger) XPRequired(level uint64) types.XP {
	return progression.XPRequired(level)
}

// XPRequiredUint256 is XPRequired for levels beyond uint64. It returns
// ErrOverflow when the result does not fit 256 bits.
func (l *Ledger) XPRequiredUint256(level *uint256.Int) (types.XP, error) {
	return progression.XPRequiredUint256(level)
}

// ──────────────────────────────────────────────────
// Metadata and admin
// ──────────────────────────────────────────────────

// TokenURI returns the metadata URI of a minted summoner: the base URI
// followed by the decimal id.
func (l *Ledger) TokenURI(ctx context.Context, summonerID uint64) (string, error) {
	if _, err := l.store.GetSummoner(ctx, summonerID); err != nil {
		return "", err
	}
	cfg, err := l.getSettings(ctx)
	if err != nil {
		return "", err
	}
	return cfg.BaseURI + strconv.FormatUint(summonerID, 10), nil
}

// BaseURI returns the current metadata base URI.
func (l *Ledger) BaseURI(ctx context.Context) (string, error) {
	cfg, err := l.getSettings(ctx)
	if err != nil {
		return "", err
	}
	return cfg.BaseURI, nil
}

// SetBaseURI replaces the metadata base URI. Admin only.
func (l *Ledger) SetBaseURI(ctx context.Context, uri string) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	cfg, err := l.adminSettings(ctx, caller)
	if err != nil {
		l.mu.Unlock()
		return l.denyAdmin(ctx, "SetBaseURI", caller, err)
	}
	cfg.BaseURI = uri
	cfg.UpdatedAt = time.Now().UTC()
	err = l.store.SaveSettings(ctx, cfg)
	evt := l.sequence(err, event.NewBaseURIUpdated(uri, caller))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.logger.Info("base uri updated", "base_uri", uri)
	l.plugins.EmitBaseURIUpdated(ctx, evt)
	return nil
}

// Admin returns the current admin identity.
func (l *Ledger) Admin(ctx context.Context) (common.Address, error) {
	cfg, err := l.getSettings(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if cfg.Admin == (common.Address{}) {
		return common.Address{}, ErrNoAdmin
	}
	return cfg.Admin, nil
}

// TransferAdmin hands the admin role to next. Admin only.
func (l *Ledger) TransferAdmin(ctx context.Context, next common.Address) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if next == (common.Address{}) {
		return ValidationError{Field: "admin", Message: "zero address"}
	}

	l.mu.Lock()
	cfg, err := l.adminSettings(ctx, caller)
	if err != nil {
		l.mu.Unlock()
		return l.denyAdmin(ctx, "TransferAdmin", caller, err)
	}
	cfg.Admin = next
	cfg.UpdatedAt = time.Now().UTC()
	err = l.store.SaveSettings(ctx, cfg)
	evt := l.sequence(err, event.NewAdminTransferred(caller, next))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.logger.Info("admin transferred",
		"previous", caller.Hex(),
		"admin", next.Hex(),
	)
	l.plugins.EmitAdminTransferred(ctx, evt)
	return nil
}

// sequence stamps evt with the next commit number when the write
// succeeded. l.mu must be held.
func (l *Ledger) sequence(err error, evt *event.Event) *event.Event {
	if err != nil {
		return nil
	}
	l.seq++
	evt.Seq = l.seq
	return evt
}

// adminSettings returns the settings record when caller is its admin.
// l.mu must be held so the check and the following write see the same
// record.
func (l *Ledger) adminSettings(ctx context.Context, caller common.Address) (*settings.Settings, error) {
	cfg, err := l.getSettings(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Admin == (common.Address{}) {
		return nil, ErrNoAdmin
	}
	if cfg.Admin != caller {
		return nil, ErrNotAdmin
	}
	return cfg, nil
}

// denyAdmin reports a rejected admin operation to plugins. Errors other
// than ErrNotAdmin pass through untouched.
func (l *Ledger) denyAdmin(ctx context.Context, op string, caller common.Address, err error) error {
	if errors.Is(err, ErrNotAdmin) {
		l.logger.Warn("admin operation denied",
			"op", op,
			"caller", caller.Hex(),
		)
		l.plugins.EmitUnauthorized(ctx, op, caller, ErrNotAdmin)
	}
	return err
}
