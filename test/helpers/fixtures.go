package helpers

import (
	"github.com/truthlens/truthlens-api/internal/detector"
	"github.com/truthlens/truthlens-api/internal/listing"
)

// CreateScamListing creates a listing that trips most scam indicators
func CreateScamListing() listing.ProductListing {
	return listing.ProductListing{
		Title:        "URGENT: Limited Time Miracle Deal!!!",
		Price:        "$0.50",
		Seller:       "xx",
		Rating:       "1.5",
		ReviewsCount: "2",
		URL:          "https://shop.example.com/p/1",
	}
}

// CreateLegitListing creates a complete listing from a reputable seller
func CreateLegitListing() listing.ProductListing {
	return listing.ProductListing{
		Title:        "Apple iPhone 14 Pro Max 256GB Space Black Unlocked",
		Description:  "6.7-inch Super Retina XDR display with ProMotion.",
		Price:        "$1099.99",
		Seller:       "Amazon.com",
		Rating:       "4.5",
		ReviewsCount: "15234",
		URL:          "https://www.amazon.com/dp/B0BN95FRW9",
	}
}

// CreateBareListing creates a listing with only a short title
func CreateBareListing() listing.ProductListing {
	return listing.ProductListing{Title: "Deal"}
}

// CreateVerdict creates a detector verdict with the given score
func CreateVerdict(score float64) detector.Verdict {
	return detector.Verdict{
		"score": score,
		"sentence_scores": []interface{}{
			map[string]interface{}{"sentence": "example", "score": score},
		},
	}
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
