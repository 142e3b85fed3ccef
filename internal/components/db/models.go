package db

type CacheEntry struct {
	Key       string
	Value     []byte
	Timestamp int64
}

type SessionToken struct {
	Origin      string
	AccessToken string
	ExpiresAt   int64
}
