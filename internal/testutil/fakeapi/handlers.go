package fakeapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

func (s *Server) register(c *gin.Context) {
	var req model.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		badRequest(c, "Validation failed", "email", "Email already registered")
		return
	}
	u := s.addAccount(req.Name, req.Email, req.Password)
	c.JSON(http.StatusCreated, model.AuthResult{User: u, Token: s.issueToken(u.ID)})
}

func (s *Server) login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[req.Email]
	if !ok || a.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, model.AuthResult{User: a.user, Token: s.issueToken(a.user.ID)})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userByID(c.GetString("uid"))
	if !ok {
		notFound(c, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// categories

func (s *Server) visibleCategory(cat model.Category, uid string) bool {
	return cat.UserID == nil || *cat.UserID == uid
}

func (s *Server) listCategories(c *gin.Context) {
	uid := c.GetString("uid")
	typ := model.Type(c.Query("type"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Category{}
	for _, cat := range s.categories {
		if s.visibleCategory(cat, uid) && (typ == "" || cat.Type == typ) {
			out = append(out, cat)
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) getCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.categoryByID(c.Param("id"))
	if !ok || !s.visibleCategory(s.categories[i], c.GetString("uid")) {
		notFound(c, "Category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": s.categories[i]})
}

func (s *Server) createCategory(c *gin.Context) {
	var d model.CategoryDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if len(d.Name) < 3 {
		badRequest(c, "Validation failed", "name", "Name must be at least 3 characters")
		return
	}
	uid := c.GetString("uid")
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cat := model.Category{
		ID: s.nextID("cat"), Name: d.Name, Type: d.Type, Color: d.Color, Icon: d.Icon,
		UserID: &uid, CreatedAt: now, UpdatedAt: now,
	}
	s.categories = append(s.categories, cat)
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (s *Server) updateCategory(c *gin.Context) {
	var d model.CategoryDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.categoryByID(c.Param("id"))
	if !ok || !s.visibleCategory(s.categories[i], c.GetString("uid")) {
		notFound(c, "Category")
		return
	}
	if s.categories[i].IsSystem() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot modify system categories"})
		return
	}
	cat := &s.categories[i]
	cat.Name, cat.Type, cat.Color, cat.Icon = d.Name, d.Type, d.Color, d.Icon
	cat.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"category": *cat})
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.categoryByID(c.Param("id"))
	if !ok || !s.visibleCategory(s.categories[i], c.GetString("uid")) {
		notFound(c, "Category")
		return
	}
	if s.categories[i].IsSystem() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot delete system categories"})
		return
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// transactions

func (s *Server) transactionByID(id, uid string) (int, bool) {
	for i, t := range s.transactions {
		if t.ID == id && t.UserID == uid {
			return i, true
		}
	}
	return -1, false
}

func (s *Server) listTransactions(c *gin.Context) {
	uid := c.GetString("uid")
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	typ := model.Type(c.Query("type"))
	catID := c.Query("categoryId")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Transaction{}
	for _, t := range s.transactions {
		switch {
		case t.UserID != uid,
			month > 0 && int(t.Date.Month) != month,
			year > 0 && t.Date.Year != year,
			typ != "" && t.Type != typ,
			catID != "" && t.CategoryID != catID:
			continue
		}
		out = append(out, s.withCategory(t))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (s *Server) getTransaction(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.transactionByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Transaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": s.withCategory(s.transactions[i])})
}

func (s *Server) createTransaction(c *gin.Context) {
	var d model.TransactionDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if !d.Amount.IsPositive() {
		badRequest(c, "Validation failed", "amount", "Amount must be positive")
		return
	}
	uid := c.GetString("uid")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categoryByID(d.CategoryID); !ok {
		badRequest(c, "Validation failed", "categoryId", "Category not found")
		return
	}
	now := time.Now().UTC()
	t := model.Transaction{
		ID: s.nextID("txn"), Amount: d.Amount, Type: d.Type, Date: d.Date,
		Description: d.Description, UserID: uid, CategoryID: d.CategoryID,
		CreatedAt: now, UpdatedAt: now,
	}
	s.transactions = append(s.transactions, t)
	c.JSON(http.StatusCreated, gin.H{"transaction": s.withCategory(t)})
}

func (s *Server) updateTransaction(c *gin.Context) {
	var d model.TransactionDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.transactionByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Transaction")
		return
	}
	t := &s.transactions[i]
	t.Amount, t.Type, t.Date, t.Description, t.CategoryID = d.Amount, d.Type, d.Date, d.Description, d.CategoryID
	t.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, gin.H{"transaction": s.withCategory(*t)})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.transactionByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Transaction")
		return
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// budgets

func (s *Server) budgetByID(id, uid string) (int, bool) {
	for i, b := range s.budgets {
		if b.ID == id && b.UserID == uid {
			return i, true
		}
	}
	return -1, false
}

func (s *Server) listBudgets(c *gin.Context) {
	uid := c.GetString("uid")
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Budget{}
	for _, b := range s.budgets {
		if b.UserID != uid || (month > 0 && b.Month != month) || (year > 0 && b.Year != year) {
			continue
		}
		out = append(out, s.computeBudget(b))
	}
	c.JSON(http.StatusOK, gin.H{"budgets": out})
}

func (s *Server) budgetAlerts(c *gin.Context) {
	uid := c.GetString("uid")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BudgetAlert{}
	hundred := decimal.NewFromInt(100)
	eighty := decimal.NewFromInt(80)
	for _, b := range s.budgets {
		if b.UserID != uid {
			continue
		}
		v := s.computeBudget(b)
		status := model.StatusOK
		switch {
		case v.Percentage.GreaterThanOrEqual(hundred):
			status = model.StatusExceeded
		case v.Percentage.GreaterThanOrEqual(eighty):
			status = model.StatusWarning
		}
		if status == model.StatusOK {
			continue
		}
		a := model.BudgetAlert{
			BudgetID: v.ID, CategoryID: v.CategoryID, BudgetAmount: v.Amount,
			Spent: v.Spent, Remaining: v.Remaining, Percentage: v.Percentage, Status: status,
		}
		if v.Category != nil {
			a.CategoryName, a.CategoryColor, a.CategoryIcon = v.Category.Name, v.Category.Color, v.Category.Icon
		}
		out = append(out, a)
	}
	c.JSON(http.StatusOK, gin.H{"alerts": out})
}

func (s *Server) getBudget(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.budgetByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Budget")
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": s.computeBudget(s.budgets[i])})
}

func (s *Server) createBudget(c *gin.Context) {
	var d model.BudgetDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	uid := c.GetString("uid")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.UserID == uid && b.CategoryID == d.CategoryID && b.Month == d.Month && b.Year == d.Year {
			c.JSON(http.StatusConflict, gin.H{"message": "Budget already exists for this category and period"})
			return
		}
	}
	b := model.Budget{ID: s.nextID("bud"), CategoryID: d.CategoryID, Amount: d.Amount, Month: d.Month, Year: d.Year, UserID: uid}
	s.budgets = append(s.budgets, b)
	c.JSON(http.StatusCreated, gin.H{"budget": s.computeBudget(b)})
}

func (s *Server) updateBudget(c *gin.Context) {
	var d model.BudgetDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.budgetByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Budget")
		return
	}
	b := &s.budgets[i]
	b.CategoryID, b.Amount, b.Month, b.Year = d.CategoryID, d.Amount, d.Month, d.Year
	c.JSON(http.StatusOK, gin.H{"budget": s.computeBudget(*b)})
}

func (s *Server) deleteBudget(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.budgetByID(c.Param("id"), c.GetString("uid"))
	if !ok {
		notFound(c, "Budget")
		return
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}
