// Package fakeapi is an in-memory stand-in for the finance REST service,
// used by tests. It records every request so tests can assert that a
// client-side check prevented a call.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
}

type account struct {
	user     model.User
	password string
}

// Server is the fake service. All state is guarded by mu.
type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	seq          int
	accounts     map[string]*account // by email
	tokens       map[string]string   // token -> user id
	categories   []model.Category
	transactions []model.Transaction
	budgets      []model.Budget
	requests     []Request
}

// New starts a fake service and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the service root to hand to api.NewClient.
func (s *Server) URL() string { return s.srv.URL }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.record)

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)

	authed := r.Group("/", s.requireAuth)
	authed.GET("/auth/me", s.me)

	authed.GET("/categories", s.listCategories)
	authed.POST("/categories", s.createCategory)
	authed.GET("/categories/:id", s.getCategory)
	authed.PUT("/categories/:id", s.updateCategory)
	authed.DELETE("/categories/:id", s.deleteCategory)

	authed.GET("/transactions", s.listTransactions)
	authed.POST("/transactions", s.createTransaction)
	authed.GET("/transactions/:id", s.getTransaction)
	authed.PUT("/transactions/:id", s.updateTransaction)
	authed.DELETE("/transactions/:id", s.deleteTransaction)

	authed.GET("/budgets", s.listBudgets)
	authed.POST("/budgets", s.createBudget)
	authed.GET("/budgets/alerts", s.budgetAlerts)
	authed.GET("/budgets/:id", s.getBudget)
	authed.PUT("/budgets/:id", s.updateBudget)
	authed.DELETE("/budgets/:id", s.deleteBudget)

	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Auth:   c.GetHeader("Authorization"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	tok := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	uid, ok := s.tokens[tok]
	s.mu.Unlock()
	if tok == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}
	c.Set("uid", uid)
	c.Next()
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path. An empty
// method matches any.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if (method == "" || r.Method == method) && r.Path == path {
			n++
		}
	}
	return n
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// SeedUser creates an account and returns it with a valid token.
func (s *Server) SeedUser(name, email, password string) (model.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addAccount(name, email, password)
	return u, s.issueToken(u.ID)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

// SeedCategory stores c. A nil UserID makes it a system category.
func (s *Server) SeedCategory(c model.Category) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.nextID("cat")
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories = append(s.categories, c)
	return c
}

// SeedTransaction stores t for the given user.
func (s *Server) SeedTransaction(t model.Transaction) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = s.nextID("txn")
	}
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.transactions = append(s.transactions, t)
	return s.withCategory(t)
}

// SeedBudget stores b.
func (s *Server) SeedBudget(b model.Budget) model.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = s.nextID("bud")
	}
	s.budgets = append(s.budgets, b)
	return s.computeBudget(b)
}

func (s *Server) addAccount(name, email, password string) model.User {
	now := time.Now().UTC()
	u := model.User{ID: s.nextID("user"), Name: name, Email: email, CreatedAt: &now}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

func (s *Server) issueToken(uid string) string {
	tok := s.nextID("token-" + uid)
	s.tokens[tok] = uid
	return tok
}

func (s *Server) userByID(uid string) (model.User, bool) {
	for _, a := range s.accounts {
		if a.user.ID == uid {
			return a.user, true
		}
	}
	return model.User{}, false
}

func (s *Server) categoryByID(id string) (int, bool) {
	for i, c := range s.categories {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Server) withCategory(t model.Transaction) model.Transaction {
	if i, ok := s.categoryByID(t.CategoryID); ok {
		c := s.categories[i]
		t.Category = &c
	}
	return t
}

// computeBudget fills the derived fields from stored transactions.
func (s *Server) computeBudget(b model.Budget) model.Budget {
	spent := decimal.Zero
	for _, t := range s.transactions {
		if t.UserID == b.UserID && t.CategoryID == b.CategoryID && t.Type == model.Expense && t.Date.In(b.Month, b.Year) {
			spent = spent.Add(t.Amount)
		}
	}
	b.Spent = spent
	b.Remaining = b.Amount.Sub(spent)
	b.Percentage = decimal.Zero
	if b.Amount.IsPositive() {
		b.Percentage = spent.Mul(decimal.NewFromInt(100)).Div(b.Amount).Round(2)
	}
	if i, ok := s.categoryByID(b.CategoryID); ok {
		c := s.categories[i]
		b.Category = &c
	}
	return b
}

func badRequest(c *gin.Context, msg string, fields ...string) {
	var errs []gin.H
	for i := 0; i+1 < len(fields); i += 2 {
		errs = append(errs, gin.H{"path": fields[i], "msg": fields[i+1]})
	}
	body := gin.H{"message": msg}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	c.JSON(http.StatusBadRequest, body)
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}
