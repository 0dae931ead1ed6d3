package listing

import "github.com/truthlens/truthlens-api/internal/detector"

// Status is the verdict on a listing.
type Status string

const (
	StatusLegit     Status = "legit"
	StatusScam      Status = "scam"
	StatusUncertain Status = "uncertain"
)

// ProductListing holds the fields extracted from a product page. All fields
// are free-form text; an empty field means the page did not show it.
type ProductListing struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Seller       string `json:"seller"`
	Rating       string `json:"rating"`
	ReviewsCount string `json:"reviews_count"`
	URL          string `json:"url"`
}

// IndicatorTally accumulates rule effects in evaluation order.
type IndicatorTally struct {
	ScamScore  float64
	LegitScore float64
	Reasons    []string
	Fired      []int
}

// Indicators is the serialized score pair.
type Indicators struct {
	ScamIndicators  float64 `json:"scam_indicators"`
	LegitIndicators float64 `json:"legit_indicators"`
}

// AnalysisResult is the outcome of analysing one listing. AIAnalysis is nil
// when the detector was not consulted or failed; an empty verdict from a
// successful call is still serialized.
type AnalysisResult struct {
	Status     Status           `json:"status"`
	Confidence float64          `json:"confidence"`
	Reasons    []string         `json:"reasons"`
	Indicators Indicators       `json:"indicators"`
	AIAnalysis detector.Verdict `json:"ai_analysis,omitzero"`
	AIError    string           `json:"ai_error,omitempty"`
}

// AnalyzeProductRequest is the body of POST /analyze-product. Title is a
// pointer so a missing title can be told apart from an empty one.
type AnalyzeProductRequest struct {
	Title        *string `json:"title" validate:"required"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	Seller       string  `json:"seller"`
	Rating       string  `json:"rating"`
	ReviewsCount string  `json:"reviews_count"`
	URL          string  `json:"url"`
}

// Listing converts a validated request into a ProductListing.
func (r *AnalyzeProductRequest) Listing() ProductListing {
	var title string
	if r.Title != nil {
		title = *r.Title
	}
	return ProductListing{
		Title:        title,
		Description:  r.Description,
		Price:        r.Price,
		Seller:       r.Seller,
		Rating:       r.Rating,
		ReviewsCount: r.ReviewsCount,
		URL:          r.URL,
	}
}

// ProductInfo echoes identifying fields back to the caller.
type ProductInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AnalyzeProductResponse is the success envelope of POST /analyze-product.
type AnalyzeProductResponse struct {
	Success     bool            `json:"success"`
	Analysis    *AnalysisResult `json:"analysis"`
	ProductInfo ProductInfo     `json:"product_info"`
}

// CheckTextRequest is the body of POST /check-text.
type CheckTextRequest struct {
	Text *string `json:"text" validate:"required"`
}
