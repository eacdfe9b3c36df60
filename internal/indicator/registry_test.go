package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockIndicator is a simple mock indicator for testing the registry
type mockIndicator struct {
	name types.IndicatorType
}

func newMockFactory(name types.IndicatorType) Factory {
	return func() Indicator {
		return &mockIndicator{name: name}
	}
}

func (m *mockIndicator) Name() types.IndicatorType {
	return m.name
}

func (m *mockIndicator) Config(params ...any) error {
	return nil
}

func (m *mockIndicator) Params() []any {
	return nil
}

func (m *mockIndicator) Compute(bars []types.Bar) types.IndicatorResult {
	return singleOutput(m.name, types.NewSeries(len(bars)))
}

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestNewIndicatorRegistry() {
	registry := NewIndicatorRegistry()
	suite.NotNil(registry)
	suite.Empty(registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestRegisterIndicator() {
	registry := NewIndicatorRegistry()

	err := registry.RegisterIndicator(newMockFactory(types.IndicatorTypeRSI))
	suite.NoError(err)

	// Verify the indicator is registered
	retrieved, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeRSI, retrieved.Name())
}

func (suite *RegistryTestSuite) TestRegisterIndicatorDuplicate() {
	registry := NewIndicatorRegistry()

	err := registry.RegisterIndicator(newMockFactory(types.IndicatorTypeRSI))
	suite.NoError(err)

	// Trying to register another indicator with the same name should fail
	err = registry.RegisterIndicator(newMockFactory(types.IndicatorTypeRSI))
	suite.Error(err)
	suite.Contains(err.Error(), "already registered")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestRegisterNilFactory() {
	registry := NewIndicatorRegistry()

	err := registry.RegisterIndicator(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *RegistryTestSuite) TestGetIndicatorNotFound() {
	registry := NewIndicatorRegistry()

	_, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Error(err)
	suite.Contains(err.Error(), "not found")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestGetIndicatorReturnsFreshInstance() {
	registry := NewDefaultRegistry()

	first, err := registry.GetIndicator(types.IndicatorTypeSMA)
	suite.Require().NoError(err)
	suite.Require().NoError(first.Config(5))

	second, err := registry.GetIndicator(types.IndicatorTypeSMA)
	suite.Require().NoError(err)
	suite.Equal([]any{20}, second.Params())
	suite.Equal([]any{5}, first.Params())
}

func (suite *RegistryTestSuite) TestListIndicators() {
	registry := NewIndicatorRegistry()

	suite.NoError(registry.RegisterIndicator(newMockFactory(types.IndicatorTypeRSI)))
	suite.NoError(registry.RegisterIndicator(newMockFactory(types.IndicatorTypeATR)))

	suite.Equal([]types.IndicatorType{types.IndicatorTypeATR, types.IndicatorTypeRSI}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(newMockFactory(types.IndicatorTypeRSI)))

	suite.NoError(registry.RemoveIndicator(types.IndicatorTypeRSI))

	_, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Error(err)

	err = registry.RemoveIndicator(types.IndicatorTypeRSI)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistryHasAllIndicators() {
	registry := NewDefaultRegistry()
	suite.ElementsMatch(types.AllIndicatorTypes, registry.ListIndicators())

	for _, name := range types.AllIndicatorTypes {
		ind, err := registry.GetIndicator(name)
		suite.Require().NoError(err)
		suite.Equal(name, ind.Name())
	}
}
