package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type JsonSchemaTestSuite struct {
	suite.Suite
}

func TestJsonSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(JsonSchemaTestSuite))
}

func (suite *JsonSchemaTestSuite) TestToJSONSchema() {
	type TestConfig struct {
		Period int    `json:"period" jsonschema:"title=Period,description=Window length,minimum=1,default=20"`
		Symbol string `json:"symbol" jsonschema:"title=Symbol,description=The symbol to chart,default=QQQ"`
	}

	schema, err := ToJSONSchema(TestConfig{})
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "period")
	suite.Contains(properties, "symbol")

	period := properties["period"].(map[string]any)
	suite.Equal("Period", period["title"])
	suite.EqualValues(20, period["default"])
}
