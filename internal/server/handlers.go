package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

type openAccountRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

type operationRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id" binding:"required"`
	ToAccountID   string `json:"to_account_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
	UserID        string `json:"user_id"`
}

type accountResponse struct {
	ID        string `json:"id"`
	Number    string `json:"number"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"account_id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	UserID      *string `json:"user_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type transferResponse struct {
	Withdrawal transactionResponse `json:"withdrawal"`
	Deposit    transactionResponse `json:"deposit"`
}

func (s *Server) openAccount(c *gin.Context) {
	var req openAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	account, err := s.accounts.Open(c.Request.Context(), userID, req.Name, domain.AccountType(req.Type))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (s *Server) getAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	account, err := s.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (s *Server) getAccountByNumber(c *gin.Context) {
	account, err := s.accounts.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (s *Server) listUserAccounts(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	accounts, err := s.accounts.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deposit(c *gin.Context) {
	op, ok := s.bindOperation(c)
	if !ok {
		return
	}

	transaction, err := s.ledger.Deposit(c.Request.Context(), op.accountID, op.amount, op.description, op.actorID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

func (s *Server) withdraw(c *gin.Context) {
	op, ok := s.bindOperation(c)
	if !ok {
		return
	}

	transaction, err := s.ledger.Withdraw(c.Request.Context(), op.accountID, op.amount, op.description, op.actorID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// boundOperation is an operationRequest after parsing and validation.
type boundOperation struct {
	accountID   uuid.UUID
	amount      decimal.Decimal
	description string
	actorID     *uuid.UUID
}

// bindOperation parses a deposit/withdraw request body. On failure it writes
// the response and returns ok=false.
func (s *Server) bindOperation(c *gin.Context) (boundOperation, bool) {
	var req operationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return boundOperation{}, false
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
		return boundOperation{}, false
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		s.writeError(c, err)
		return boundOperation{}, false
	}

	actorID, ok := s.parseActor(c, req.UserID)
	if !ok {
		return boundOperation{}, false
	}

	return boundOperation{
		accountID:   accountID,
		amount:      amount,
		description: req.Description,
		actorID:     actorID,
	}, true
}

// parseActor parses the optional acting user id. On failure it writes the
// response and returns ok=false.
func (s *Server) parseActor(c *gin.Context, raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return nil, false
	}
	return &id, true
}

func (s *Server) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from_account_id"})
		return
	}
	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to_account_id"})
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}

	actorID, ok := s.parseActor(c, req.UserID)
	if !ok {
		return
	}

	withdrawal, deposit, err := s.ledger.Transfer(c.Request.Context(), fromID, toID, amount, req.Description, actorID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transferResponse{
		Withdrawal: toTransactionResponse(withdrawal),
		Deposit:    toTransactionResponse(deposit),
	})
}

// listTransactions serves the full history, or a window when start/end query
// parameters are present (RFC 3339), optionally narrowed by type.
func (s *Server) listTransactions(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	startRaw, endRaw := c.Query("start"), c.Query("end")

	var transactions []domain.Transaction
	if startRaw == "" && endRaw == "" {
		transactions, err = s.queries.History(c.Request.Context(), accountID)
	} else {
		var start, end time.Time
		if start, err = time.Parse(time.RFC3339, startRaw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
		if end, err = time.Parse(time.RFC3339, endRaw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}

		var txType *domain.TransactionType
		if raw := c.Query("type"); raw != "" {
			t := domain.TransactionType(raw)
			if t != domain.TransactionTypeDeposit && t != domain.TransactionTypeWithdrawal {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
				return
			}
			txType = &t
		}

		transactions, err = s.queries.HistoryWindow(c.Request.Context(), accountID, start, end, txType)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// listRecentTransactions serves the n most recent transactions, default 20.
func (s *Server) listRecentTransactions(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	n := 20
	if raw := c.Query("n"); raw != "" {
		if n, err = strconv.Atoi(raw); err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid n"})
			return
		}
	}

	transactions, err := s.queries.LastN(c.Request.Context(), accountID, n)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// writeError maps the domain error taxonomy to HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrSameAccount), errors.Is(err, domain.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{
		ID:        account.ID.String(),
		Number:    account.Number,
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   domain.FormatAmount(account.Balance),
		UserID:    account.UserID.String(),
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionResponse(transaction *domain.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          transaction.ID.String(),
		AccountID:   transaction.AccountID.String(),
		Type:        string(transaction.Type),
		Amount:      domain.FormatAmount(transaction.Amount),
		Description: transaction.Description,
		CreatedAt:   transaction.CreatedAt.UTC().Format(time.RFC3339),
	}
	if transaction.UserID != nil {
		id := transaction.UserID.String()
		resp.UserID = &id
	}
	return resp
}

func toTransactionResponses(transactions []domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, toTransactionResponse(&transactions[i]))
	}
	return out
}
