package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/weba-hub/weba-hub-api/models"
	"github.com/weba-hub/weba-hub-api/utils"
)

// TierKeys lists the caller-selectable distance tiers in display order
var TierKeys = []string{"1-5", "5-10", "10-50", "50-100", "100+"}

// DiscoveryConfig holds the radii and paging defaults for technician
// discovery. The values are injected into the service rather than read from
// package globals so tests can tighten them.
type DiscoveryConfig struct {
	// TierRadii maps a distance tier key to its search radius in meters
	TierRadii map[string]float64
	// DefaultTier is used when the caller omits or mistypes the tier key
	DefaultTier string
	// FeaturedMaxDistance caps featured technicians regardless of the
	// selected tier (meters)
	FeaturedMaxDistance float64
	// PremiumMaxDistance caps premium technicians regardless of the
	// selected tier (meters)
	PremiumMaxDistance float64
	// DefaultPageSize is used when the caller omits the page size
	DefaultPageSize int
}

// DefaultDiscoveryConfig returns the production discovery configuration
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		TierRadii: map[string]float64{
			"1-5":    5000,
			"5-10":   10000,
			"10-50":  50000,
			"50-100": 100000,
			"100+":   500000,
		},
		DefaultTier:         "5-10",
		FeaturedMaxDistance: 30000,
		PremiumMaxDistance:  500000,
		DefaultPageSize:     50,
	}
}

// RadiusForTier resolves a tier key to its radius in meters, falling back to
// the default tier for unknown keys.
func (c DiscoveryConfig) RadiusForTier(key string) float64 {
	if radius, ok := c.TierRadii[key]; ok {
		return radius
	}
	return c.TierRadii[c.DefaultTier]
}

// DiscoveryQuery describes a technician search request
type DiscoveryQuery struct {
	SubService   string
	Category     string
	Latitude     *float64
	Longitude    *float64
	DistanceTier string
	Page         int
	PageSize     int
}

// HasLocation reports whether the caller supplied a search point
func (q *DiscoveryQuery) HasLocation() bool {
	return q.Latitude != nil && q.Longitude != nil
}

// RankedTechnician is a matching technician annotated with ranking data.
// Distance fields are nil when the search ran without a caller location.
type RankedTechnician struct {
	models.User
	Distance         *float64 `json:"distance"`         // meters
	DisplayDistance  *float64 `json:"display_distance"` // kilometers
	IsPremiumActive  bool     `json:"is_premium_active"`
	IsFeaturedActive bool     `json:"is_featured_active"`
}

// DiscoveryResult is a filtered, ranked and paginated set of technicians
type DiscoveryResult struct {
	Items        []RankedTechnician
	TotalCount   int
	PremiumCount int
	RegularCount int
	Page         int
	PageSize     int
	TotalPages   int
	// HasDistance is false when the search ran without a location, either
	// because the caller supplied none or because the distance pipeline
	// degraded and fell back to the unranked path.
	HasDistance bool
}

// TierCountBreakdown splits a tier's technician count by visibility class
type TierCountBreakdown struct {
	Premium int `json:"premium"`
	Regular int `json:"regular"`
	Total   int `json:"total"`
}

// DiscoveryService finds, ranks and paginates technicians for a service
// request
type DiscoveryService struct {
	db  *gorm.DB
	cfg DiscoveryConfig
	now func() time.Time
}

// NewDiscoveryService creates a discovery service over the given database
func NewDiscoveryService(db *gorm.DB, cfg DiscoveryConfig) *DiscoveryService {
	return &DiscoveryService{db: db, cfg: cfg, now: time.Now}
}

// SetClock overrides the service clock (primarily for testing)
func (s *DiscoveryService) SetClock(now func() time.Time) {
	s.now = now
}

// FindTechnicians returns the ranked, paginated technicians matching the
// query. With a caller location, candidates are filtered by tier-specific
// radii and sorted premium-first, featured-second, then by distance and
// rating. Without one, all matches are returned sorted by premium status and
// rating. If the distance pipeline fails it degrades to the no-location
// result rather than failing the request.
func (s *DiscoveryService) FindTechnicians(q DiscoveryQuery) (*DiscoveryResult, error) {
	if q.SubService == "" {
		return nil, &ValidationError{Field: "subService", Message: "Sub-service and category are required"}
	}
	if q.Category == "" {
		return nil, &ValidationError{Field: "category", Message: "Sub-service and category are required"}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = s.cfg.DefaultPageSize
	}

	candidates, err := s.findCandidates(q.Category, q.SubService)
	if err != nil {
		return nil, err
	}

	var ranked []RankedTechnician
	hasDistance := false
	if q.HasLocation() {
		ranked, err = s.rankByDistance(candidates, *q.Latitude, *q.Longitude, s.cfg.RadiusForTier(q.DistanceTier))
		if err != nil {
			// Degraded path: the condition could be any number of things in
			// the stored data, so log it and serve the unranked result
			// instead of failing the whole request.
			log.Printf("Location-based ranking failed, falling back to unranked results: %v", err)
			ranked = s.rankWithoutDistance(candidates)
		} else {
			hasDistance = true
		}
	} else {
		ranked = s.rankWithoutDistance(candidates)
	}

	totalCount := len(ranked)
	premiumCount := 0
	for _, tech := range ranked {
		if tech.IsPremiumActive {
			premiumCount++
		}
	}

	// Paginate after the full filter+sort; an out-of-range page yields an
	// empty slice, not an error.
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return &DiscoveryResult{
		Items:        ranked[start:end],
		TotalCount:   totalCount,
		PremiumCount: premiumCount,
		RegularCount: totalCount - premiumCount,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   int(math.Ceil(float64(totalCount) / float64(pageSize))),
		HasDistance:  hasDistance,
	}, nil
}

// CountByDistanceTier returns, for each distance tier, how many matching
// technicians fall within that tier's radius, split into premium and regular.
// The counts are informational: unlike FindTechnicians, premium and featured
// technicians are measured against the tier radius here.
func (s *DiscoveryService) CountByDistanceTier(q DiscoveryQuery) (map[string]int, map[string]TierCountBreakdown, int, error) {
	if !q.HasLocation() {
		return nil, nil, 0, &ValidationError{Field: "location", Message: "Latitude, longitude, sub-service and category are required"}
	}
	if q.SubService == "" || q.Category == "" {
		return nil, nil, 0, &ValidationError{Field: "subService", Message: "Latitude, longitude, sub-service and category are required"}
	}

	candidates, err := s.findCandidates(q.Category, q.SubService)
	if err != nil {
		return nil, nil, 0, err
	}

	now := s.now()
	counts := make(map[string]int, len(TierKeys))
	breakdown := make(map[string]TierCountBreakdown, len(TierKeys))

	for _, tier := range TierKeys {
		radius := s.cfg.TierRadii[tier]
		premium := 0
		regular := 0
		for _, tech := range candidates {
			if !tech.HasLocation() {
				continue
			}
			distance := utils.DistanceMeters(*q.Latitude, *q.Longitude, *tech.Latitude, *tech.Longitude)
			if distance > radius {
				continue
			}
			if tech.IsPremiumActive(now) {
				premium++
			} else {
				regular++
			}
		}
		counts[tier] = premium + regular
		breakdown[tier] = TierCountBreakdown{
			Premium: premium,
			Regular: regular,
			Total:   premium + regular,
		}
	}

	return counts, breakdown, len(candidates), nil
}

// likeEscaper escapes the LIKE metacharacters in a membership pattern so
// sub-service names containing %, _ or \ match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// membershipPattern builds the LIKE pattern matching one element of a stored
// StringList column. The element is JSON-encoded the same way the column
// stores it, so names with escaped characters (quotes, <, >, &) line up with
// the stored bytes.
func membershipPattern(subService string) string {
	encoded, _ := json.Marshal(subService) // marshaling a string cannot fail
	return "%" + likeEscaper.Replace(string(encoded)) + "%"
}

// findCandidates selects active technicians matching the category exactly and
// offering the sub-service in any of the three offering fields. The three-way
// OR spans the current and legacy field names; older accounts keep their
// offerings in services or professions.
func (s *DiscoveryService) findCandidates(category, subService string) ([]models.User, error) {
	// The offering columns hold JSON arrays; quoting the value matches exact
	// membership, not substrings.
	pattern := membershipPattern(subService)

	var candidates []models.User
	err := s.db.
		Where("user_type = ? AND is_active = ? AND category = ?", models.UserTypeTechnician, true, category).
		Where(`sub_services LIKE ? ESCAPE '\' OR services LIKE ? ESCAPE '\' OR professions LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
		Find(&candidates).Error
	if err != nil {
		return nil, &StorageError{Op: "find technician candidates", Err: err}
	}
	return candidates, nil
}

// rankByDistance annotates candidates with distance and visibility status,
// filters them by the eligibility rules and sorts them. Candidates without a
// stored location are excluded. Premium and featured technicians are not
// bound by the caller-selected tier; they carry their own fixed radii.
func (s *DiscoveryService) rankByDistance(candidates []models.User, lat, lng, tierRadius float64) ([]RankedTechnician, error) {
	now := s.now()
	ranked := make([]RankedTechnician, 0, len(candidates))

	for _, tech := range candidates {
		if !tech.HasLocation() {
			continue
		}

		distance := utils.DistanceMeters(lat, lng, *tech.Latitude, *tech.Longitude)
		if math.IsNaN(distance) || math.IsInf(distance, 0) {
			return nil, fmt.Errorf("technician %s has malformed coordinates", tech.Username)
		}

		premium := tech.IsPremiumActive(now)
		featured := tech.IsFeaturedActive(now)

		// First matching rule wins
		switch {
		case premium:
			if distance > s.cfg.PremiumMaxDistance {
				continue
			}
		case featured:
			if distance > s.cfg.FeaturedMaxDistance {
				continue
			}
		default:
			if distance > tierRadius {
				continue
			}
		}

		displayDistance := distance / 1000
		ranked = append(ranked, RankedTechnician{
			User:             tech,
			Distance:         &distance,
			DisplayDistance:  &displayDistance,
			IsPremiumActive:  premium,
			IsFeaturedActive: featured,
		})
	}

	// Premium first, featured second, then closest, then best rated
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsPremiumActive != b.IsPremiumActive {
			return a.IsPremiumActive
		}
		if a.IsFeaturedActive != b.IsFeaturedActive {
			return a.IsFeaturedActive
		}
		if *a.Distance != *b.Distance {
			return *a.Distance < *b.Distance
		}
		return a.RatingAverage > b.RatingAverage
	})

	return ranked, nil
}

// rankWithoutDistance annotates candidates with visibility status and sorts
// by premium status then rating. Distance fields stay nil.
func (s *DiscoveryService) rankWithoutDistance(candidates []models.User) []RankedTechnician {
	now := s.now()
	ranked := make([]RankedTechnician, 0, len(candidates))

	for _, tech := range candidates {
		ranked = append(ranked, RankedTechnician{
			User:             tech,
			IsPremiumActive:  tech.IsPremiumActive(now),
			IsFeaturedActive: tech.IsFeaturedActive(now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsPremiumActive != b.IsPremiumActive {
			return a.IsPremiumActive
		}
		return a.RatingAverage > b.RatingAverage
	})

	return ranked
}

// FindRelatedTechnicians returns technicians in the category split into exact
// sub-service matches and related ones offering other sub-services. Kept for
// the older service browse endpoint.
func (s *DiscoveryService) FindRelatedTechnicians(category, subService string) (exact, related []models.User, err error) {
	if subService == "" || category == "" {
		return nil, nil, &ValidationError{Field: "subService", Message: "subService and category are required"}
	}

	candidates, err := s.findCandidates(category, subService)
	if err != nil {
		return nil, nil, err
	}

	var others []models.User
	err = s.db.
		Where("user_type = ? AND is_active = ? AND category = ?", models.UserTypeTechnician, true, category).
		Find(&others).Error
	if err != nil {
		return nil, nil, &StorageError{Op: "find related technicians", Err: err}
	}

	exact = candidates
	for _, tech := range others {
		if !tech.OffersSubService(subService) {
			related = append(related, tech)
		}
	}
	return exact, related, nil
}
