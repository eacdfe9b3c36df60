package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"polygon"}, GetSupportedProviders())
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_Polygon() {
	info, err := GetProviderInfo("polygon")

	suite.NoError(err)
	suite.Equal("polygon", info.Name)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)
	suite.NotEmpty(info.Description)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_InvalidProvider() {
	_, err := GetProviderInfo("binance")

	suite.Error(err)
	suite.Contains(err.Error(), "unsupported provider")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *ProviderRegistryTestSuite) TestGetDownloadConfigSchema_Polygon() {
	schema, err := GetDownloadConfigSchema("polygon")
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "ticker")
	suite.Contains(properties, "apiKey")
	suite.Contains(properties, "interval")
}

func (suite *ProviderRegistryTestSuite) TestGetDownloadConfigSchema_Invalid() {
	_, err := GetDownloadConfigSchema("invalid")
	suite.Error(err)
}

func (suite *ProviderRegistryTestSuite) TestParseDownloadConfig() {
	config, err := ParseDownloadConfig("polygon", `{"ticker":"QQQ","startDate":"2020-01-01","endDate":"2020-02-01","apiKey":"k"}`)
	suite.Require().NoError(err)

	polygonConfig, ok := config.(*PolygonDownloadConfig)
	suite.Require().True(ok)
	suite.Equal("QQQ", polygonConfig.Ticker)

	_, err = ParseDownloadConfig("invalid", "{}")
	suite.Error(err)
}
