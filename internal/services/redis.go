package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SetProviderLocation stores a provider's latest position in Redis
func SetProviderLocation(ctx context.Context, providerID uint, lat, lng float64, cellKey string) error {
	locationData := map[string]interface{}{
		"lat":     lat,
		"lng":     lng,
		"cellKey": cellKey,
		"updated": time.Now().Unix(),
	}

	data, err := json.Marshal(locationData)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("provider:location:%d", providerID)
	return RedisClient.Set(ctx, key, data, time.Hour).Err()
}

// GetProviderLocation retrieves a provider's latest position from Redis
func GetProviderLocation(ctx context.Context, providerID uint) (lat, lng float64, cellKey string, err error) {
	key := fmt.Sprintf("provider:location:%d", providerID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return 0, 0, "", err
	}

	var locationData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &locationData); err != nil {
		return 0, 0, "", err
	}

	lat, _ = locationData["lat"].(float64)
	lng, _ = locationData["lng"].(float64)
	cellKey, _ = locationData["cellKey"].(string)

	return lat, lng, cellKey, nil
}

// SetProviderAvailability stores a provider's availability flag
func SetProviderAvailability(ctx context.Context, providerID uint, available bool) error {
	key := fmt.Sprintf("provider:availability:%d", providerID)
	value := "true"
	if !available {
		value = "false"
	}
	return RedisClient.Set(ctx, key, value, time.Hour).Err()
}

// GetProviderAvailability retrieves a provider's availability flag
func GetProviderAvailability(ctx context.Context, providerID uint) (bool, error) {
	key := fmt.Sprintf("provider:availability:%d", providerID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result == "true", nil
}

// LocationUpdatesChannel carries provider position updates to tracking
// consumers, in-process and external alike.
const LocationUpdatesChannel = "provider:location:updates"

// PublishProviderLocation publishes a position update to Redis pub/sub so
// tracking consumers can follow moving vehicles. heading is the bearing
// of the movement in degrees.
func PublishProviderLocation(ctx context.Context, providerID uint, lat, lng, heading float64) error {
	locationData := map[string]interface{}{
		"providerId": providerID,
		"location": map[string]float64{
			"lat":     lat,
			"lng":     lng,
			"heading": heading,
		},
		"timestamp": time.Now().Unix(),
	}

	data, err := json.Marshal(locationData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, LocationUpdatesChannel, data).Err()
}

// PublishTripUpdate publishes a trip status change to Redis pub/sub
func PublishTripUpdate(ctx context.Context, tripID uint, biddingStatus string, data map[string]interface{}) error {
	updateData := map[string]interface{}{
		"tripId":        tripID,
		"biddingStatus": biddingStatus,
		"data":          data,
		"timestamp":     time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "trip:updates", jsonData).Err()
}
