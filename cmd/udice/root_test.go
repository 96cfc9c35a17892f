package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/storage"
)

const contentDir = "../../content/dice"

func runCmd(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(a.teardown)
	cmd := newRootCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--catalog", contentDir, "--seed", "1"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func memoryApp() (*app, *storage.MemoryRepository) {
	repo := storage.NewMemoryRepository()
	a := newApp()
	a.openRepo = func(context.Context) (storage.Repository, func(), error) {
		return repo, func() {}, nil
	}
	return a, repo
}

func TestRoll_Numeric(t *testing.T) {
	out, err :=runCmd(t, newApp(), "roll", "2d6+3")
	require.NoError(t, err)
	assert.Equal(t, "2d6 + 3\nd6:[1] + d6:[6] + 3\n= 10\n", out)
}

func TestRoll_NamedDieQuiet(t *testing.T) {
	out, err :=runCmd(t, newApp(), "roll", "-q", "4dFate")
	require.NoError(t, err)
	assert.Equal(t, "2 Shifts\n", out)

	out, err =runCmd(t, newApp(), "roll", "dWarhammer/Challenge")
	require.NoError(t, err)
	assert.Contains(t, out, "Challenge:[")
}

func TestRoll_Several(t *testing.T) {
	out, err :=runCmd(t, newApp(), "roll", "d20", "d20")
	require.NoError(t, err)
	assert.Equal(t, "1: d20\n2: d20\n1: d20:[11]\n2: d20:[14]\n1: 11\n2: 14\n", out)
}

func TestRoll_Errors(t *testing.T) {
	_, err :=runCmd(t, newApp(), "roll", "bogus")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)

	_, err =runCmd(t, newApp(), "roll", "2dGhost")
	assert.ErrorIs(t, err, dice.ErrUnknownDie)

	_, err =runCmd(t, newApp(), "roll")
	assert.Error(t, err)
}

func TestRoll_NumericSkipsCatalog(t *testing.T) {
	a := newApp()
	t.Cleanup(a.teardown)
	cmd := newRootCommand(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--catalog", "/nonexistent", "--seed", "1", "roll", "-q", "d6"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1\n", out.String())
}

func TestStats(t *testing.T) {
	out, err :=runCmd(t, newApp(), "stats", "d6", "--runs", "3")
	require.NoError(t, err)
	assert.Equal(t, "d6\nResult of 3 rolls:\n"+
		"Average:\nTotal: 4.33\n\n"+
		"Median:\nTotal: 6.00\n\n"+
		"Mode:\nTotal: 6.00\n\n"+
		"Standard Deviation:\nTotal: 2.36\n", out)
}

func TestStats_DefaultRunsFromConfig(t *testing.T) {
	t.Setenv("UDICE_ROLLING_STATS_RUNS", "7")
	out, err :=runCmd(t, newApp(), "stats", "d4")
	require.NoError(t, err)
	assert.Contains(t, out, "Result of 7 rolls:")
}

func TestCatalogList(t *testing.T) {
	out, err :=runCmd(t, newApp(), "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fate: Fate\n")
	assert.Contains(t, out, "Star Wars: Ability, ")
}

func TestCatalogRoll(t *testing.T) {
	out, err :=runCmd(t, newApp(), "catalog", "roll", "Fate", "Fate", "-n", "4", "-q")
	require.NoError(t, err)
	assert.Equal(t, "2 Shifts\n", out, "a pool of four matches 4dFate")

	out, err =runCmd(t, newApp(), "catalog", "roll", "Fate", "Fate", "-n", "3",
		"--drop-lowest", "1", "--order-by", "Shifts")
	require.NoError(t, err)
	assert.Contains(t, out, "Shifts")
}

func TestCatalogRoll_Errors(t *testing.T) {
	_, err :=runCmd(t, newApp(), "catalog", "roll", "Nowhere", "Fate")
	assert.ErrorContains(t, err, `no die set "Nowhere"`)

	_, err =runCmd(t, newApp(), "catalog", "roll", "Fate", "Ghost")
	assert.ErrorIs(t, err, dice.ErrUnknownDie)

	_, err =runCmd(t, newApp(), "catalog", "roll", "Fate", "Fate", "-n", "3",
		"--drop-lowest", "1", "--drop-highest", "1")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err =runCmd(t, newApp(), "catalog", "roll", "Fate", "Fate", "-n", "2", "--drop-lowest", "2")
	assert.ErrorIs(t, err, dice.ErrDropsAll)

	_, err =runCmd(t, newApp(), "catalog", "roll", "Fate", "Fate", "-n", "2",
		"--drop-lowest", "1", "--order-by", "Mana")
	assert.Error(t, err)
}

func TestCatalogExport(t *testing.T) {
	out, err :=runCmd(t, newApp(), "catalog", "export", "Fate")
	require.NoError(t, err)
	assert.Contains(t, out, "set: Fate\n")
	assert.Contains(t, out, "name: Shifts")
}

func TestStoreAndSets(t *testing.T) {
	a, repo := memoryApp()
	out, err :=runCmd(t, a, "store", "Fate", "Hibernation")
	require.NoError(t, err)
	assert.Contains(t, out, "\tFate\n")
	assert.Contains(t, out, "\tHibernation\n")

	sets, err := repo.Sets(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2)

	a2 := newApp()
	a2.openRepo = a.openRepo
	out, err =runCmd(t, a2, "sets", "--dice")
	require.NoError(t, err)
	assert.Contains(t, out, sets[0].ID.String()+"\tFate\tFate\n")
}

func TestStore_AllSets(t *testing.T) {
	a, repo := memoryApp()
	_, err :=runCmd(t, a, "store")
	require.NoError(t, err)

	sets, err := repo.Sets(context.Background())
	require.NoError(t, err)
	assert.Len(t, sets, 4)
}

func TestConfigFileMissing(t *testing.T) {
	_, err :=runCmd(t, newApp(), "--config", "/nonexistent/udice.yaml", "roll", "d6")
	assert.ErrorContains(t, err, "reading config file")
}
