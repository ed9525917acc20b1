package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"donation-widget/internal/donation"
	"donation-widget/internal/embed"
	"donation-widget/internal/models"
	"donation-widget/internal/splitter"
	"donation-widget/internal/validation"
)

var errProjectRequired = errors.New("projectId or project is required")

// donationRequest names a project either inline or by id
type donationRequest struct {
	ProjectID string          `json:"projectId,omitempty"`
	Project   *models.Project `json:"project,omitempty"`
	ChainID   models.ChainID  `json:"chainId"`
	Amount    string          `json:"amount"`
	From      string          `json:"from,omitempty"`
	Policy    string          `json:"policy,omitempty"`
}

type allocationView struct {
	Index     int    `json:"index"`
	Address   string `json:"address"`
	Share     int    `json:"share"`
	Amount    string `json:"amount"`
	AmountWei string `json:"amountWei"`
}

type splitView struct {
	ChainID        models.ChainID   `json:"chainId"`
	Symbol         string           `json:"symbol"`
	Total          string           `json:"total"`
	TotalWei       string           `json:"totalWei"`
	Allocations    []allocationView `json:"allocations"`
	RemainderWei   string           `json:"remainderWei"`
	RemainderIndex int              `json:"remainderIndex"`
	Policy         string           `json:"policy"`
}

type transferView struct {
	Index       int       `json:"index"`
	To          string    `json:"to"`
	Amount      string    `json:"amount"`
	AmountWei   string    `json:"amountWei"`
	TxHash      string    `json:"txHash"`
	ExplorerURL string    `json:"explorerUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type receiptView struct {
	ProjectID   string            `json:"projectId"`
	ChainID     models.ChainID    `json:"chainId"`
	Status      string            `json:"status"`
	Split       splitView         `json:"split"`
	Transfers   []transferView    `json:"transfers"`
	FailedIndex *int              `json:"failedIndex,omitempty"`
	NotIssued   int               `json:"notIssued"`
	Error       *errorBody        `json:"error,omitempty"`
	Share       *embed.ShareLinks `json:"share,omitempty"`
}

func (a *App) resolveProject(ctx context.Context, req donationRequest) (models.Project, error) {
	if req.Project != nil {
		return *req.Project, nil
	}
	if req.ProjectID == "" {
		return models.Project{}, errProjectRequired
	}
	return a.Projects.GetProject(ctx, req.ProjectID)
}

// Split previews how an amount would be divided, nothing is sent
func (a *App) Split(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	policy := a.Donations.Policy
	if req.Policy != "" {
		p, err := splitter.ParsePolicy(req.Policy)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		policy = p
	}

	project, err := a.resolveProject(r.Context(), req)
	if err != nil {
		a.resolveFailed(w, r, err)
		return
	}

	result, err := splitter.SplitWithPolicy(policy, req.Amount, req.ChainID, project.Recipients)
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	a.json(w, http.StatusOK, newSplitView(result, policy))
}

// Donate runs the transfer sequence for one donation
func (a *App) Donate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	project, err := a.resolveProject(r.Context(), req)
	if err != nil {
		a.resolveFailed(w, r, err)
		return
	}
	// stored projects were validated on save
	if req.Project != nil {
		if verdict := validation.Validate(project); !verdict.Valid {
			a.fail(w, r, verdict.Err(), verdict)
			return
		}
	}

	intent := models.DonationIntent{
		Project: project,
		ChainID: req.ChainID,
		Amount:  req.Amount,
		From:    req.From,
	}
	receipt, err := a.Donations.Donate(r.Context(), intent)
	if receipt == nil {
		a.fail(w, r, err, nil)
		return
	}

	view := newReceiptView(receipt, a.Donations.Policy)
	if err != nil {
		status, code := classify(err)
		view.Error = &errorBody{Code: code, Message: err.Error()}
		a.json(w, status, view)
		return
	}

	chain, _ := models.LookupChain(req.ChainID)
	projectURL, linkErr := a.Embed.Generate(project, embed.KindLink)
	if linkErr != nil {
		projectURL = a.Embed.BaseURL
	}
	links := embed.Share(project.Name, projectURL, req.Amount, chain.NativeCurrency.Symbol)
	view.Share = &links
	a.json(w, http.StatusOK, view)
}

func (a *App) resolveFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errProjectRequired) {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.fail(w, r, err, nil)
}

// Share builds the social share intents for a donation
func (a *App) Share(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	amount := q.Get("amount")
	if name == "" || amount == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and amount are required")
		return
	}
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = "ETH"
	}
	projectURL := q.Get("url")
	if projectURL == "" {
		projectURL = a.Embed.BaseURL
	}
	a.json(w, http.StatusOK, embed.Share(name, projectURL, amount, symbol))
}

func newSplitView(result models.SplitResult, policy splitter.RemainderPolicy) splitView {
	chain, _ := models.LookupChain(result.ChainID)
	decimals := int32(models.NativeDecimals)

	view := splitView{
		ChainID:        result.ChainID,
		Symbol:         chain.NativeCurrency.Symbol,
		Total:          splitter.FormatAmount(result.Total, decimals),
		TotalWei:       result.Total.String(),
		Allocations:    make([]allocationView, 0, len(result.Allocations)),
		RemainderWei:   "0",
		RemainderIndex: result.RemainderIndex,
		Policy:         policy.String(),
	}
	if result.Remainder != nil {
		view.RemainderWei = result.Remainder.String()
	}
	for _, alloc := range result.Allocations {
		view.Allocations = append(view.Allocations, allocationView{
			Index:     alloc.Index,
			Address:   alloc.Recipient.Address,
			Share:     alloc.Recipient.Share,
			Amount:    splitter.FormatAmount(alloc.SubAmount, decimals),
			AmountWei: alloc.SubAmount.String(),
		})
	}
	return view
}

func newReceiptView(receipt *donation.Receipt, policy splitter.RemainderPolicy) receiptView {
	view := receiptView{
		ProjectID: receipt.ProjectID,
		ChainID:   receipt.ChainID,
		Split:     newSplitView(receipt.Split, policy),
		Transfers: make([]transferView, 0, len(receipt.Completed)),
		NotIssued: receipt.NotIssued,
	}

	switch {
	case receipt.Succeeded():
		view.Status = "completed"
	case len(receipt.Completed) > 0:
		view.Status = "partial"
	default:
		view.Status = "failed"
	}
	if receipt.FailedIndex >= 0 {
		idx := receipt.FailedIndex
		view.FailedIndex = &idx
	}

	for _, t := range receipt.Completed {
		view.Transfers = append(view.Transfers, transferView{
			Index:       t.Index,
			To:          t.To,
			Amount:      splitter.FormatAmount(t.Amount, models.NativeDecimals),
			AmountWei:   t.Amount.String(),
			TxHash:      t.TxHash,
			ExplorerURL: t.Explorer,
			Timestamp:   t.Timestamp,
		})
	}
	return view
}
