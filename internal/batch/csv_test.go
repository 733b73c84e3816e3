package batch_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "card_number,exp_month,exp_year,cvc,card_type,mii,bank,country,brand,type,can_purchase,transaction_error\n"

func TestReadRecords(t *testing.T) {
	t.Run("reads required columns in any order", func(t *testing.T) {
		in := "cvc,card_number,note,exp_year,exp_month\n123,4111111111111111,x,2030,12\n"
		got, err := batch.ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []models.CardRecord{{CardNumber: "4111111111111111", ExpMonth: "12", ExpYear: "2030", CVC: "123"}}, got)
	})

	t.Run("short rows yield empty fields", func(t *testing.T) {
		in := "card_number,exp_month,exp_year,cvc\n4111111111111111,12\n"
		got, err := batch.ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"exp_year", "cvc"}, got[0].Missing())
	})

	t.Run("byte order mark is ignored", func(t *testing.T) {
		in := "\ufeffcard_number,exp_month,exp_year,cvc\n4111111111111111,12,2030,123\n"
		got, err := batch.ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("stray quote keeps surrounding rows", func(t *testing.T) {
		in := "card_number,exp_month,exp_year,cvc\n" +
			"4111111111111111,12,2030,123\n" +
			"4111\"111,12,2030,123\n" +
			"6011111111111117,01,2031,456\n"
		got, err := batch.ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "4111111111111111", got[0].CardNumber)
		assert.Equal(t, "4111\"111", got[1].CardNumber)
		assert.Equal(t, "6011111111111117", got[2].CardNumber)
	})

	t.Run("missing header column errors", func(t *testing.T) {
		_, err := batch.ReadRecords(strings.NewReader("card_number,exp_month,cvc\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exp_year")
	})

	t.Run("empty input errors", func(t *testing.T) {
		_, err := batch.ReadRecords(strings.NewReader(""))
		require.Error(t, err)
	})
}

func TestWriteReports(t *testing.T) {
	t.Run("header only when empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, batch.WriteReports(&buf, nil))
		assert.Equal(t, header, buf.String())
	})

	t.Run("writes fixed column set", func(t *testing.T) {
		var buf bytes.Buffer
		err := batch.WriteReports(&buf, []models.CardReport{{
			CardRecord:       models.CardRecord{CardNumber: "4111111111111112", ExpMonth: "12", ExpYear: "2030", CVC: "123"},
			CardType:         "Visa",
			MII:              "Banking and Financial",
			Bank:             "Unknown",
			Country:          "Unknown",
			Brand:            "Unknown",
			Type:             "Unknown",
			TransactionError: batch.ChecksumFailed,
		}})
		require.NoError(t, err)
		assert.Equal(t, header+
			"4111111111111112,12,2030,123,Visa,Banking and Financial,Unknown,Unknown,Unknown,Unknown,false,Failed checksum check\n",
			buf.String())
	})
}
