package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseM3U(t *testing.T) {
	content := "#EXTM3U\r\n" +
		"#EXTINF:-1 tvg-name=\"CCTV1\" group-title=\"央视\",CCTV-1 综合\n" +
		"http://a/1.m3u8\n" +
		"#EXTINF:-1,CCTV-1 综合\n" +
		"http://a/2.m3u8\n" +
		"\n" +
		"#EXTINF:-1 group-title=\"卫视\",湖南卫视\n" +
		"#EXTVLCOPT:http-user-agent=x\n" +
		"https://b/hn.m3u8\n" +
		"http://orphan/no-extinf.m3u8\n"

	got := ParseM3U(content)

	assert.Equal(t, Groups{
		{Group: "央视", Channels: []Channel{{Name: "CCTV-1 综合", URLs: []string{"http://a/1.m3u8", "http://a/2.m3u8"}}}},
		{Group: "卫视", Channels: []Channel{{Name: "湖南卫视", URLs: []string{"https://b/hn.m3u8"}}}},
	}, got)
}

func TestParseM3U_DefaultGroup(t *testing.T) {
	got := ParseM3U("#EXTM3U\n#EXTINF:-1,Solo\nhttp://s\n")
	assert.Equal(t, Groups{{Group: DefaultGroupLabel, Channels: []Channel{{Name: "Solo", URLs: []string{"http://s"}}}}}, got)
	assert.Empty(t, ParseM3U(""))
}

func TestParseText(t *testing.T) {
	content := "Loose,http://loose\n" +
		"央视频道,#genre#\n" +
		"CCTV-1,http://a/1,with,commas\n" +
		"CCTV-1,http://a/2\n" +
		"no comma line\n" +
		",http://nameless\n" +
		"Empty,#genre#\n" +
		"\n" +
		"卫视 ,#genre#\n" +
		" 湖南卫视 , http://b/hn # http://b/hn2#\n"

	got := ParseText(content)

	assert.Equal(t, Groups{
		{Group: DefaultGroupLabel, Channels: []Channel{{Name: "Loose", URLs: []string{"http://loose"}}}},
		{Group: "央视频道", Channels: []Channel{{Name: "CCTV-1", URLs: []string{"http://a/1,with,commas", "http://a/2"}}}},
		{Group: "Empty", Channels: []Channel{}},
		{Group: "卫视", Channels: []Channel{{Name: "湖南卫视", URLs: []string{"http://b/hn", "http://b/hn2"}}}},
	}, got)
}

func TestParsePlaylist(t *testing.T) {
	m3u := ParsePlaylist("  #EXTM3U\n#EXTINF:-1 group-title=\"G\",C\nhttp://c\n")
	assert.Equal(t, "G", m3u[0].Group)

	text := ParsePlaylist("G,#genre#\nC,http://c\n")
	assert.Equal(t, "G", text[0].Group)

	assert.True(t, IsM3U("\n#EXTM3U"))
	assert.False(t, IsM3U("G,#genre#"))
}
