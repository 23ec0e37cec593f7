package mocks

//go:generate mockgen -destination=fetcher.go -package=mocks github.com/quantmind-br/cgitscrape/internal/domain Fetcher
//go:generate mockgen -destination=cache.go -package=mocks github.com/quantmind-br/cgitscrape/internal/domain Cache
