package mongo

import "testing"

func TestClusterHost(t *testing.T) {
	cases := map[string]string{
		"mongodb+srv://user:p@ss@cluster0.abc.mongodb.net/db?retryWrites=true": "cluster0.abc.mongodb.net",
		"mongodb://localhost:27017":          "localhost:27017",
		"mongodb://h1:27017,h2:27017/?rs=x": "h1:27017,h2:27017",
	}
	for in, want := range cases {
		if got := clusterHost(in); got != want {
			t.Errorf("clusterHost(%q) = %q, want %q", in, got, want)
		}
	}
}
