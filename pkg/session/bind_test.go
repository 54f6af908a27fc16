package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/session"
)

type orderForm struct {
	Item     string `mapstructure:"item"`
	Quantity int    `mapstructure:"quantity"`
	Express  bool   `mapstructure:"express"`
}

func TestBind_DecodesSessionData(t *testing.T) {
	sess := domain.NewSession()
	sess.Data["item"] = "pizza"
	// JSON-backed stores hand numbers back as float64.
	sess.Data["quantity"] = float64(2)
	sess.Data["express"] = true

	var form orderForm
	require.NoError(t, session.Bind(sess, &form))
	assert.Equal(t, orderForm{Item: "pizza", Quantity: 2, Express: true}, form)
}

func TestWrite_MergesStructIntoSession(t *testing.T) {
	sess := domain.NewSession()
	sess.Data["untouched"] = "stays"

	require.NoError(t, session.Write(sess, orderForm{Item: "salad", Quantity: 1}))

	assert.Equal(t, "salad", sess.Data["item"])
	assert.Equal(t, 1, sess.Data["quantity"])
	assert.Equal(t, "stays", sess.Data["untouched"])

	var back orderForm
	require.NoError(t, session.Bind(sess, &back))
	assert.Equal(t, "salad", back.Item)
}
