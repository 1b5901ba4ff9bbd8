package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Weather
	WeatherProvider WeatherProvider
	WeatherCache    WeatherCache

	// Storage
	UserRepository         UserRepository
	SubscriptionRepository SubscriptionRepository

	// Communication
	Messenger Messenger

	// Cache
	CacheMetrics CacheMetrics

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
}
