package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brendan.keane/urlquery/internal/errors"
)

// run executes the command tree in-process and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "parse json",
			args:     []string{"parse", "shop.com/list?page=2&tags[]=a"},
			expected: "{\n  \"baseUrl\": \"shop.com/list\",\n  \"queryParams\": {\n    \"page\": \"2\",\n    \"tags\": [\n      \"a\"\n    ]\n  }\n}\n",
		},
		{
			name:     "parse without query",
			args:     []string{"parse", "shop.com/list/", "--remove-trailing-slash"},
			expected: "{\n  \"baseUrl\": \"shop.com/list\",\n  \"queryParams\": {}\n}\n",
		},
		{
			name:     "stringify",
			args:     []string{"stringify", "shop.com?old=1", "-q", "page=2", "-q", "color=red", "-o", "url"},
			expected: "shop.com?color=red&page=2\n",
		},
		{
			name:     "stringify empty query",
			args:     []string{"stringify", "shop.com/?old=1", "-o", "url"},
			expected: "shop.com/\n",
		},
		{
			name:     "update clears with bare key",
			args:     []string{"update", "txt.com?page=1&color=blue", "-q", "page", "-q", "size=m", "-o", "url"},
			expected: "txt.com?color=blue&page=&size=m\n",
		},
		{
			name:     "update keep strategy",
			args:     []string{"update", "txt.com?page=1", "-q", "page=5", "-q", "sort=asc", "--merge", "keep", "-o", "url"},
			expected: "txt.com?page=1&sort=asc\n",
		},
		{
			name:     "comma in value",
			args:     []string{"stringify", "shop.com", "-q", "msg=hello,world", "-o", "url"},
			expected: "shop.com?msg=hello%2Cworld\n",
		},
		{
			name:     "comma in unencoded value",
			args:     []string{"stringify", "shop.com", "-q", "msg=hello,world", "--encode=false", "-o", "url"},
			expected: "shop.com?msg=hello,world\n",
		},
		{
			name:     "comma array format",
			args:     []string{"update", "shop.com?tags=a", "--array-format", "comma", "--encode=false", "-q", "tags=a,b", "-o", "url"},
			expected: "shop.com?tags=a,b\n",
		},
		{
			name:     "flat format repeats keys",
			args:     []string{"stringify", "txt.com", "--format", "flat", "-q", "id=1", "-q", "id=2", "-o", "url"},
			expected: "txt.com?id=1&id=2\n",
		},
		{
			name:     "decode whole query",
			args:     []string{"parse", "txt.com?a%3D1%26b%3Dstring", "--decode", "--format", "flat", "-o", "url"},
			expected: "txt.com?a=1&b=string\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCLI_Environment(t *testing.T) {
	t.Setenv("URLQ_FORMAT", "flat")

	out, err := run(t, "stringify", "txt.com", "-q", "id=1", "-q", "id=2", "-o", "url")
	require.NoError(t, err)
	assert.Equal(t, "txt.com?id=1&id=2\n", out)
}

func TestCLI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errType errors.ErrorType
	}{
		{"unknown format", []string{"parse", "a.com", "--format", "xml"}, errors.ErrorTypeConfig},
		{"dots need brackets", []string{"parse", "a.com", "--format", "flat", "--allow-dots"}, errors.ErrorTypeConfig},
		{"malformed escape", []string{"parse", "a.com?x=%zz"}, errors.ErrorTypeCodec},
		{"nested flat output", []string{"stringify", "a.com", "--format", "flat", "--json", `{"f":{"a":1}}`}, errors.ErrorTypeCodec},
		{"bad json", []string{"update", "a.com", "--json", "[1]"}, errors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetType(err))
		})
	}
}

func TestCLI_ArgumentCount(t *testing.T) {
	_, err := run(t, "parse")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.True(t, strings.Contains(out, "urlq"), "completion script mentions the command")
		})
	}

	_, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
