package mocks

//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-dashboard/internal/indicator Indicator
//go:generate mockgen -destination=./mock_loader.go -package=mocks github.com/rxtech-lab/argo-dashboard/pkg/marketdata Loader
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-dashboard/pkg/marketdata/provider Provider
