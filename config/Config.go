package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type EncoderDecoderType string

const JSON_ENCODER_DECODER EncoderDecoderType = "JSON"

type Config struct {
	RedisConfig              RedisStorageConfig
	HttpPort                 int
	StorageType              StorageType
	EncoderDecoderType       EncoderDecoderType
	RunnerCapacity           int
	ReconcileIntervalSeconds int
	NotifyLogFile            string
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}
