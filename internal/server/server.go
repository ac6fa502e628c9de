package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// Ledger is the mutation surface the HTTP layer consumes.
type Ledger interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*domain.Transaction, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*domain.Transaction, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*domain.Transaction, *domain.Transaction, error)
}

// Queries is the read-only history surface.
type Queries interface {
	History(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	HistoryWindow(ctx context.Context, accountID uuid.UUID, start, end time.Time, txType *domain.TransactionType) ([]domain.Transaction, error)
	LastN(ctx context.Context, accountID uuid.UUID, n int) ([]domain.Transaction, error)
}

// Accounts is the account opening and lookup surface.
type Accounts interface {
	Open(ctx context.Context, userID uuid.UUID, name string, accountType domain.AccountType) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
}

// Server wires the gin router to the domain services.
type Server struct {
	engine   *gin.Engine
	ledger   Ledger
	queries  Queries
	accounts Accounts
	logger   zerolog.Logger
}

// New creates a Server with all routes registered.
func New(ledger Ledger, queries Queries, accounts Accounts, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		ledger:   ledger,
		queries:  queries,
		accounts: accounts,
		logger:   logger.With().Str("component", "http").Logger(),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()
	return s
}

// Handler exposes the router for net/http servers and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.POST("/accounts", s.openAccount)
	api.GET("/accounts/:id", s.getAccount)
	api.GET("/accounts/number/:number", s.getAccountByNumber)
	api.GET("/users/:id/accounts", s.listUserAccounts)

	api.POST("/transactions/deposit", s.deposit)
	api.POST("/transactions/withdraw", s.withdraw)
	api.POST("/transactions/transfer", s.transfer)

	api.GET("/accounts/:id/transactions", s.listTransactions)
	api.GET("/accounts/:id/transactions/recent", s.listRecentTransactions)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
