package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/overview"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/planning"
)

const dateLayout = "2006-01-02"

// OverviewProvider computes net worth projections
type OverviewProvider interface {
	GetOverview(ctx context.Context, req overview.Request) (*overview.Projection, error)
}

// PlanningSyncer projects planning accounts through a tax year
type PlanningSyncer interface {
	SyncPlanning(ctx context.Context, userID, year int) (*planning.Result, error)
}

// Server implements the ForecastService gRPC server
type Server struct {
	OverviewService OverviewProvider
	PlanningService PlanningSyncer

	// Now supplies "today" when a request leaves it out
	Now func() time.Time
}

// NewServer creates a new gRPC server instance
func NewServer(overviewService OverviewProvider, planningService PlanningSyncer) *Server {
	return &Server{
		OverviewService: overviewService,
		PlanningService: planningService,
		Now:             time.Now,
	}
}

type longTermRequest struct {
	Enabled       bool     `json:"enabled"`
	Years         int      `json:"years"`
	Income        *int64   `json:"income"`
	XIRR          *float64 `json:"xirr"`
	StockPurchase *int64   `json:"stock_purchase"`
}

type overviewRequest struct {
	UserID     int                `json:"user_id"`
	Today      string             `json:"today"`
	NumPast    int                `json:"num_past"`
	NumFuture  int                `json:"num_future"`
	LongTerm   longTermRequest    `json:"long_term"`
	LivePrices map[string]float64 `json:"live_prices"`
}

type seriesResponse struct {
	CashLiquid     []int64 `json:"cash_liquid"`
	CashOther      []int64 `json:"cash_other"`
	Stocks         []int64 `json:"stocks"`
	StockCostBasis []int64 `json:"stock_cost_basis"`
	Pension        []int64 `json:"pension"`
	Options        []int64 `json:"options"`
	HomeEquity     []int64 `json:"home_equity"`
	Assets         []int64 `json:"assets"`
	Liabilities    []int64 `json:"liabilities"`
	NetWorth       []int64 `json:"net_worth"`
	Income         []int64 `json:"income"`
	Spending       []int64 `json:"spending"`
	FTI            []int64 `json:"fti"`
}

type overviewResponse struct {
	Dates                []string       `json:"dates"`
	MonthIndex           []int          `json:"month_index"`
	StartPredictionIndex int            `json:"start_prediction_index"`
	Contribution         int64          `json:"contribution"`
	XIRR                 float64        `json:"xirr"`
	Series               seriesResponse `json:"series"`
}

// GetOverview handles the GetOverview RPC
func (s *Server) GetOverview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in overviewRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	// Parse today, defaulting to the server clock
	today := s.Now()
	if in.Today != "" {
		parsed, err := time.Parse(dateLayout, in.Today)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid today format: %v", err)
		}
		today = parsed
	}

	// Parse live prices keyed by fund ID
	livePrices := make(map[int]float64, len(in.LivePrices))
	for key, price := range in.LivePrices {
		fundID, err := strconv.Atoi(key)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid live price fund id %q", key)
		}
		livePrices[fundID] = price
	}

	projection, err := s.OverviewService.GetOverview(ctx, overview.Request{
		UserID:    in.UserID,
		Today:     today,
		NumPast:   in.NumPast,
		NumFuture: in.NumFuture,
		LongTerm: domain.LongTermOptions{
			Enabled: in.LongTerm.Enabled,
			Rates: domain.LongTermRates{
				Years:         in.LongTerm.Years,
				Income:        in.LongTerm.Income,
				XIRR:          in.LongTerm.XIRR,
				StockPurchase: in.LongTerm.StockPurchase,
			},
		},
		LivePrices: livePrices,
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := overviewResponse{
		Dates:                make([]string, len(projection.Dates)),
		MonthIndex:           make([]int, len(projection.Dates)),
		StartPredictionIndex: projection.StartPredictionIndex,
		Contribution:         projection.Contribution,
		XIRR:                 projection.XIRR,
		Series: seriesResponse{
			CashLiquid:     projection.Series.CashLiquid,
			CashOther:      projection.Series.CashOther,
			Stocks:         projection.Series.Stocks,
			StockCostBasis: projection.Series.StockCostBasis,
			Pension:        projection.Series.Pension,
			Options:        projection.Series.Options,
			HomeEquity:     projection.Series.HomeEquity,
			Assets:         projection.Series.Assets,
			Liabilities:    projection.Series.Liabilities,
			NetWorth:       projection.Series.NetWorth,
			Income:         projection.Series.Income,
			Spending:       projection.Series.Spending,
			FTI:            projection.Series.FTI,
		},
	}
	for i, d := range projection.Dates {
		out.Dates[i] = d.Date.Format(dateLayout)
		out.MonthIndex[i] = d.MonthIndex
	}

	return encode(out)
}

type planningRequest struct {
	UserID int `json:"user_id"`
	Year   int `json:"year"`
}

type incomeRowResponse struct {
	Date        string `json:"date"`
	IncomeID    int    `json:"income_id"`
	Gross       int64  `json:"gross"`
	Pension     int64  `json:"pension"`
	IncomeTax   int64  `json:"income_tax"`
	NI          int64  `json:"ni"`
	StudentLoan int64  `json:"student_loan"`
	Net         int64  `json:"net"`
	Verified    bool   `json:"verified"`
}

type creditCardRowResponse struct {
	Date      string `json:"date"`
	CardID    int    `json:"card_id"`
	Value     int64  `json:"value"`
	Predicted bool   `json:"predicted"`
}

type valueRowResponse struct {
	Date       string `json:"date"`
	ValueID    int    `json:"value_id"`
	Name       string `json:"name"`
	Value      int64  `json:"value"`
	IsTransfer bool   `json:"is_transfer"`
	AccountID  int    `json:"account_id,omitempty"`
}

type monthResponse struct {
	Date        string `json:"date"`
	Income      int64  `json:"income"`
	CreditCards int64  `json:"credit_cards"`
	Values      int64  `json:"values"`
	Total       int64  `json:"total"`
	Balance     int64  `json:"balance"`
	AboveUpper  bool   `json:"above_upper"`
	BelowLower  bool   `json:"below_lower"`
}

type accountResponse struct {
	AccountID   int                     `json:"account_id"`
	Name        string                  `json:"name"`
	StartValue  int64                   `json:"start_value"`
	Income      []incomeRowResponse     `json:"income"`
	CreditCards []creditCardRowResponse `json:"credit_cards"`
	Values      []valueRowResponse      `json:"values"`
	Months      []monthResponse         `json:"months"`
}

type planningResponse struct {
	Year     int               `json:"year"`
	Accounts []accountResponse `json:"accounts"`
}

// SyncPlanning handles the SyncPlanning RPC
func (s *Server) SyncPlanning(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in planningRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Year == 0 {
		in.Year = planning.TaxYear(s.Now())
	}

	result, err := s.PlanningService.SyncPlanning(ctx, in.UserID, in.Year)
	if err != nil {
		return nil, mapError(err)
	}

	out := planningResponse{Year: result.Year, Accounts: make([]accountResponse, 0, len(result.Accounts))}
	for _, account := range result.Accounts {
		ar := accountResponse{
			AccountID:   account.AccountID,
			Name:        account.Name,
			StartValue:  account.StartValue,
			Income:      make([]incomeRowResponse, 0, len(account.Income)),
			CreditCards: make([]creditCardRowResponse, 0, len(account.CreditCards)),
			Values:      make([]valueRowResponse, 0, len(account.Values)),
			Months:      make([]monthResponse, 0, len(account.Months)),
		}
		for _, row := range account.Income {
			ar.Income = append(ar.Income, incomeRowResponse{
				Date:        row.Date.Format(dateLayout),
				IncomeID:    row.IncomeID,
				Gross:       row.Gross,
				Pension:     row.Pension,
				IncomeTax:   row.IncomeTax,
				NI:          row.NI,
				StudentLoan: row.StudentLoan,
				Net:         row.Net(),
				Verified:    row.Verified,
			})
		}
		for _, row := range account.CreditCards {
			ar.CreditCards = append(ar.CreditCards, creditCardRowResponse{
				Date:      row.Date.Format(dateLayout),
				CardID:    row.CardID,
				Value:     row.Value,
				Predicted: row.Predicted,
			})
		}
		for _, row := range account.Values {
			ar.Values = append(ar.Values, valueRowResponse{
				Date:       row.Date.Format(dateLayout),
				ValueID:    row.ValueID,
				Name:       row.Name,
				Value:      row.Value,
				IsTransfer: row.IsTransfer,
				AccountID:  row.AccountID,
			})
		}
		for _, m := range account.Months {
			ar.Months = append(ar.Months, monthResponse{
				Date:        m.Date.Format(dateLayout),
				Income:      m.Income,
				CreditCards: m.CreditCards,
				Values:      m.Values,
				Total:       m.Total,
				Balance:     m.Balance,
				AboveUpper:  m.AboveUpper,
				BelowLower:  m.BelowLower,
			})
		}
		out.Accounts = append(out.Accounts, ar)
	}

	return encode(out)
}

// decode converts a Struct request into a typed request via its JSON form
func decode(req *structpb.Struct, v interface{}) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "missing request body")
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode converts a typed response into a Struct via its JSON form
func encode(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	errorMsg := err.Error()

	// Map common validation errors to InvalidArgument
	if strings.Contains(errorMsg, "must be positive") ||
		strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "must reference") ||
		strings.Contains(errorMsg, "must have") ||
		strings.Contains(errorMsg, "must be") ||
		strings.Contains(errorMsg, "must cover") ||
		strings.Contains(errorMsg, "cannot") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	// Map "not found" errors to NotFound
	if strings.Contains(errorMsg, "not found") {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
