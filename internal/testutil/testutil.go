// Package testutil holds the synthetic passenger fixtures shared by tests.
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// PassengerHeader is the Titanic training schema.
var PassengerHeader = []string{
	"PassengerId", "Survived", "Pclass", "Name", "Sex", "Age",
	"SibSp", "Parch", "Ticket", "Fare", "Cabin", "Embarked",
}

// PassengerRows is a 10-row table with 7 non-survivors and 3 survivors,
// two missing ages (rows 6 and 9) and one missing port (row 9).
// Observed ages have median 30.5; the most frequent port is S.
var PassengerRows = [][]string{
	{"1", "0", "3", "Braund, Mr. Owen Harris", "male", "22", "1", "0", "A/5 21171", "7.25", "", "S"},
	{"2", "1", "1", "Cumings, Mrs. John Bradley", "female", "38", "1", "0", "PC 17599", "71.2833", "C85", "C"},
	{"3", "1", "3", "Heikkinen, Miss. Laina", "female", "26", "0", "0", "STON/O2. 3101282", "7.925", "", "S"},
	{"4", "0", "1", "Futrelle, Mr. Jacques", "male", "35", "1", "0", "113803", "53.1", "C123", "S"},
	{"5", "0", "3", "Allen, Mr. William Henry", "male", "35", "0", "0", "373450", "8.05", "", "S"},
	{"6", "0", "3", "Moran, Mr. James", "male", "", "0", "0", "330877", "8.4583", "", "Q"},
	{"7", "0", "1", "McCarthy, Mr. Timothy J", "male", "54", "0", "0", "17463", "51.8625", "E46", "S"},
	{"8", "0", "3", "Palsson, Master. Gosta Leonard", "male", "2", "3", "1", "349909", "21.075", "", "S"},
	{"9", "1", "3", "Johnson, Mrs. Oscar W", "female", "", "0", "2", "347742", "11.1333", "", ""},
	{"10", "0", "2", "Nasser, Mr. Nicholas", "male", "14", "1", "0", "237736", "30.0708", "", "C"},
}

const (
	FixtureAgeMedian    = 30.5
	FixtureEmbarkedMode = "S"
)

// PassengerRecords returns header plus rows, copied so callers may modify them.
func PassengerRecords() [][]string {
	out := make([][]string, 0, len(PassengerRows)+1)
	out = append(out, append([]string(nil), PassengerHeader...))
	for _, row := range PassengerRows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

// SyntheticRecords builds a larger deterministic table with the same schema.
// Every fifth passenger has no age and every seventh has no port; roughly a
// third survive.
func SyntheticRecords(n int) [][]string {
	out := [][]string{append([]string(nil), PassengerHeader...)}
	ports := []string{"S", "C", "Q", "S", "S"}
	for i := 1; i <= n; i++ {
		survived := "0"
		sex := "male"
		if i%3 == 0 {
			survived = "1"
			sex = "female"
		}
		if i%11 == 0 {
			sex = "female"
		}
		age := fmt.Sprintf("%d", 5+(i*7)%60)
		if i%5 == 0 {
			age = ""
		}
		port := ports[i%len(ports)]
		if i%7 == 0 {
			port = ""
		}
		cabin := ""
		if i%4 == 0 {
			cabin = fmt.Sprintf("C%d", i)
		}
		out = append(out, []string{
			fmt.Sprintf("%d", i),
			survived,
			fmt.Sprintf("%d", 1+i%3),
			fmt.Sprintf("Passenger, Mr. Number %d", i),
			sex,
			age,
			fmt.Sprintf("%d", i%3),
			fmt.Sprintf("%d", i%2),
			fmt.Sprintf("T%05d", i),
			fmt.Sprintf("%.2f", 5+float64((i*13)%90)),
			cabin,
			port,
		})
	}
	return out
}

// WriteCSV writes records to name inside a fresh temp dir and returns the path.
func WriteCSV(t testing.TB, name string, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)

	writer := csv.NewWriter(file)
	require.NoError(t, writer.WriteAll(records))
	require.NoError(t, file.Close())
	return path
}
