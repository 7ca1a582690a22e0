package consolidator_test

import (
	"fmt"

	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/live"
)

func Example() {
	groups := live.Groups{
		{Group: "央视", Channels: []live.Channel{{Name: "CCTV1", URLs: []string{"http://a"}}}},
		{Group: "央视", Channels: []live.Channel{{Name: "CCTV1", URLs: []string{"http://a"}}, {Name: "CCTV2", URLs: []string{"http://b"}}}},
		{Group: "卫视", Channels: []live.Channel{{Name: "CCTV1", URLs: []string{"http://a"}}}},
		{Group: "MovieX", Channels: []live.Channel{{Name: "MovieX", URLs: []string{"http://m"}}}},
	}

	result := consolidator.Default().Consolidate(groups)
	for _, g := range result.Groups {
		for _, ch := range g.Channels {
			fmt.Println(g.Group, ch.Name, ch.URLs)
		}
	}
	// Output:
	// 央视 CCTV1 [http://a]
	// 央视 CCTV2 [http://b]
	// 单剧 MovieX [http://m]
}
