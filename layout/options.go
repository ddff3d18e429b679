package layout

// BuildOptions 配置一次布局所需的全部输入。
type BuildOptions struct {
	Geometry Geometry
	Styles   StyleTable
	Measure  MeasureFunc
}
