package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the Parkwise application
// Pattern: parkwise:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // 24 hours - for very stable data
	TTL_STATIC_MEDIUM = 12 * time.Hour // 12 hours - for lot layouts
	TTL_STATIC_SHORT  = 6 * time.Hour  // 6 hours - for user profiles
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - for lot details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // 1 hour - for lot listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - for pricing tiers
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for user bookings
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // 5 minutes - for review listings
)

// Highly Dynamic (Micro TTL: real-time sensitive)
const (
	TTL_REALTIME_SHORT = 30 * time.Second // 30 seconds - for live slot counts
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "parkwise"
)

// ================== LOTS MODULE ==================

// Lot Cache Keys
const (
	// Lot listings and searches
	CACHE_KEY_LOTS_LIST   = CACHE_PREFIX + ":lots:list"   // + :page:X:limit:Y:status:Z
	CACHE_KEY_LOTS_SEARCH = CACHE_PREFIX + ":lots:search" // + :query:X:page:Y

	// Individual lot details
	CACHE_KEY_LOT_DETAIL  = CACHE_PREFIX + ":lots:detail:uuid:"  // + lot-id
	CACHE_KEY_LOT_PRICING = CACHE_PREFIX + ":lots:pricing:uuid:" // + lot-id
)

// Lot Cache TTLs
const (
	TTL_LOT_LIST    = TTL_SEMI_STATIC_SHORT  // 1 hour
	TTL_LOT_DETAIL  = TTL_SEMI_STATIC_MEDIUM // 2 hours
	TTL_LOT_PRICING = TTL_SEMI_STATIC_QUICK  // 15 minutes
)

// ================== SLOTS MODULE ==================

// Slot Cache Keys
const (
	CACHE_KEY_SLOTS_BY_LOT      = CACHE_PREFIX + ":slots:lot:uuid:"         // + lot-id
	CACHE_KEY_SLOT_AVAILABILITY = CACHE_PREFIX + ":slots:availability:lot:" // + lot-id:class:vehicle-class
	CACHE_KEY_SLOT_COUNTS       = CACHE_PREFIX + ":slots:counts:lot:"       // + lot-id
)

// Slot Cache TTLs
const (
	TTL_SLOTS_BY_LOT      = TTL_DYNAMIC_SHORT  // 5 minutes
	TTL_SLOT_AVAILABILITY = TTL_REALTIME_SHORT // 30 seconds
	TTL_SLOT_COUNTS       = TTL_REALTIME_SHORT // 30 seconds
)

// ================== AUTH MODULE ==================

// Auth Cache Keys
const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

// Auth Cache TTLs
const (
	TTL_USER_PROFILE = TTL_STATIC_SHORT // 6 hours
)

// ================== BOOKINGS MODULE ==================

// Booking Cache Keys
const (
	CACHE_KEY_USER_BOOKINGS  = CACHE_PREFIX + ":bookings:user:uuid:"   // + user-id:page:X
	CACHE_KEY_BOOKING_DETAIL = CACHE_PREFIX + ":bookings:detail:uuid:" // + booking-id
)

// Booking Cache TTLs
const (
	TTL_USER_BOOKINGS  = TTL_DYNAMIC_MEDIUM // 10 minutes
	TTL_BOOKING_DETAIL = TTL_DYNAMIC_MEDIUM // 10 minutes
)

// ================== REVIEWS MODULE ==================

// Review Cache Keys
const (
	CACHE_KEY_REVIEWS_BY_LOT = CACHE_PREFIX + ":reviews:lot:uuid:"        // + lot-id:page:X
	CACHE_KEY_LOT_RATING     = CACHE_PREFIX + ":reviews:rating:lot:uuid:" // + lot-id
)

// Review Cache TTLs
const (
	TTL_REVIEWS_BY_LOT = TTL_DYNAMIC_SHORT // 5 minutes
	TTL_LOT_RATING     = TTL_DYNAMIC_SHORT // 5 minutes
)

// ================== CACHE INVALIDATION PATTERNS ==================

// Patterns for cache invalidation (used with Redis KEYS command or manual invalidation)
const (
	// Lot-related invalidation patterns
	PATTERN_INVALIDATE_LOTS_ALL = CACHE_PREFIX + ":lots:*"

	// Slot-related invalidation patterns
	PATTERN_INVALIDATE_SLOTS_ALL = CACHE_PREFIX + ":slots:*"

	// Review-related invalidation patterns
	PATTERN_INVALIDATE_REVIEWS_ALL = CACHE_PREFIX + ":reviews:*"

	// User-related invalidation patterns
	PATTERN_INVALIDATE_USER_ALL = CACHE_PREFIX + ":*:user:*" // + user-id + *
)

// ================== HELPER FUNCTIONS ==================

// BuildLotListKey constructs the lot listing cache key
// Example: BuildLotListKey(1, 10, "ACTIVE") -> "parkwise:lots:list:page:1:limit:10:status:ACTIVE"
func BuildLotListKey(page, limit int, status string) string {
	if status != "" {
		return CACHE_KEY_LOTS_LIST + ":page:" + fmt.Sprintf("%d", page) + ":limit:" + fmt.Sprintf("%d", limit) + ":status:" + status
	}
	return CACHE_KEY_LOTS_LIST + ":page:" + fmt.Sprintf("%d", page) + ":limit:" + fmt.Sprintf("%d", limit)
}

func BuildLotDetailKey(lotID string) string {
	return CACHE_KEY_LOT_DETAIL + lotID
}

func BuildSlotAvailabilityKey(lotID, vehicleClass string) string {
	return CACHE_KEY_SLOT_AVAILABILITY + lotID + ":class:" + vehicleClass
}

func BuildSlotCountsKey(lotID string) string {
	return CACHE_KEY_SLOT_COUNTS + lotID
}

func BuildUserBookingsKey(userID string, page int) string {
	return CACHE_KEY_USER_BOOKINGS + userID + ":page:" + fmt.Sprintf("%d", page)
}

func BuildReviewsByLotKey(lotID string, page int) string {
	return CACHE_KEY_REVIEWS_BY_LOT + lotID + ":page:" + fmt.Sprintf("%d", page)
}
