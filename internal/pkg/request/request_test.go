package request

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"staybook/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formContext(t *testing.T, values url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("POST", "/?limit=5&price=abc", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestParamID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "-1"}, {Key: "word", Value: "x"}}

	id, err := ParamID(c, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, name := range []string{"bad", "word", "missing"} {
		_, err := ParamID(c, name)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), name)
	}
}

func TestFormNumbers(t *testing.T) {
	c := formContext(t, url.Values{
		"max_guests":   {"4"},
		"total_rooms":  {""},
		"rent_per_day": {"99.5"},
		"total_beds":   {"two"},
	})

	v, ok, err := FormInt(c, "max_guests")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, *v)

	v, ok, err = FormInt(c, "total_rooms")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok, err = FormInt(c, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	_, _, err = FormInt(c, "total_beds")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	f, ok, err := FormFloat(c, "rent_per_day")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 99.5, *f, 0.0001)
}

func TestQueryNumbersIgnoreBadInput(t *testing.T) {
	c := formContext(t, url.Values{})
	require.NotNil(t, QueryInt(c, "limit"))
	assert.Equal(t, 5, *QueryInt(c, "limit"))
	assert.Nil(t, QueryFloat(c, "price"))
	assert.Nil(t, QueryInt(c, "missing"))
}
