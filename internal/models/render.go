// internal/models/render.go
package models

// RenderConfig 交给绘图库的声明式配置（plotly 形状）
type RenderConfig struct {
	Data   []RenderTrace `json:"data"`
	Layout RenderLayout  `json:"layout"`
}

// RenderTrace 一条数据轨迹
type RenderTrace struct {
	Type                  ChartType     `json:"type"`
	X                     []string      `json:"x,omitempty"`
	Y                     []float64     `json:"y,omitempty"`
	Labels                []string      `json:"labels,omitempty"`
	Values                []float64     `json:"values,omitempty"`
	TextInfo              string        `json:"textinfo,omitempty"`
	InsideTextOrientation string        `json:"insidetextorientation,omitempty"`
	Marker                *RenderMarker `json:"marker,omitempty"`
}

// RenderMarker 标记样式
type RenderMarker struct {
	Color string `json:"color"`
}

// RenderAxis 坐标轴
type RenderAxis struct {
	Title string `json:"title"`
}

// RenderMargin 画布边距
type RenderMargin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

// RenderLayout 布局
type RenderLayout struct {
	Title  string       `json:"title"`
	XAxis  *RenderAxis  `json:"xaxis,omitempty"`
	YAxis  *RenderAxis  `json:"yaxis,omitempty"`
	Height int          `json:"height"`
	Width  int          `json:"width"`
	Margin RenderMargin `json:"margin"`
}
