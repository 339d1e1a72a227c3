package table

import (
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a semicolon separated export", t, func() {
		csv := "id;day;score;contributors;flag\n" +
			"a1;2024-01-01;80;\"{\"\"deep_sleep\"\": 80}\";true\n" +
			"a2;2024-01-02;;\"{}\";false\n" +
			"a3;2024-01-03;NaN;;\n"

		tbl, err := Load("dailysleep.csv", strings.NewReader(csv))

		Convey("Then rows and columns are parsed", func() {
			So(err, ShouldBeNil)
			So(tbl.Name, ShouldEqual, "dailysleep.csv")
			So(tbl.Columns, ShouldResemble, []string{"id", "day", "score", "contributors", "flag"})
			So(tbl.Len(), ShouldEqual, 3)
		})

		Convey("Then numeric columns become float64 and missing cells nil", func() {
			So(tbl.Rows[0]["score"], ShouldEqual, 80.0)
			So(tbl.Rows[1]["score"], ShouldBeNil)
			So(tbl.Rows[2]["score"], ShouldBeNil)
		})

		Convey("Then quoted JSON survives intact", func() {
			So(tbl.Rows[0]["contributors"], ShouldEqual, `{"deep_sleep": 80}`)
			So(tbl.Rows[2]["contributors"], ShouldBeNil)
		})

		Convey("Then boolean columns become bool", func() {
			So(tbl.Rows[0]["flag"], ShouldEqual, true)
			So(tbl.Rows[1]["flag"], ShouldEqual, false)
			So(tbl.Rows[2]["flag"], ShouldBeNil)
		})

		Convey("Then string columns stay strings", func() {
			So(tbl.Rows[1]["day"], ShouldEqual, "2024-01-02")
		})
	})

	Convey("Given numeric columns with infinities", t, func() {
		tbl, err := Load("x.csv", strings.NewReader("v\n1\ninf\n-Infinity\n3\n"))

		Convey("Then non-finite values are stored as nil", func() {
			So(err, ShouldBeNil)
			So(tbl.Column("v"), ShouldResemble, []any{1.0, nil, nil, 3.0})
		})
	})

	Convey("Given a file with a byte order mark and odd headers", t, func() {
		tbl, err := Load("x.csv", strings.NewReader("\xEF\xBB\xBFa;;a;a\n1;2;3;4\n"))

		Convey("Then headers are cleaned and disambiguated", func() {
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"a", "Unnamed: 1", "a.1", "a.2"})
			So(tbl.Rows[0]["a.2"], ShouldEqual, 4.0)
		})
	})

	Convey("Given a row shorter than the header", t, func() {
		tbl, err := Load("x.csv", strings.NewReader("a;b;c\n1;2\n"))

		Convey("Then missing fields are nil", func() {
			So(err, ShouldBeNil)
			So(tbl.Rows[0]["c"], ShouldBeNil)
			So(tbl.HasColumn("c"), ShouldBeTrue)
		})
	})

	Convey("Given a row longer than the header", t, func() {
		_, err := Load("bad.csv", strings.NewReader("a;b\n1;2\n1;2;3\n"))

		Convey("Then a file error names the file and the line", func() {
			So(err, ShouldNotBeNil)
			var fe *FileError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.File, ShouldEqual, "bad.csv")
			So(errors.Is(err, ErrMalformedRow), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "Error reading bad.csv: ")
			So(err.Error(), ShouldContainSubstring, "line 3")
		})
	})

	Convey("Given an empty file", t, func() {
		_, err := Load("empty.csv", strings.NewReader(""))

		Convey("Then it is rejected", func() {
			So(errors.Is(err, ErrEmptyFile), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "Error reading empty.csv: no columns to parse from file")
		})
	})

	Convey("Given the same content loaded twice", t, func() {
		csv := "day;steps\n2024-01-01;5000\n2024-01-02;15000\n"
		a, errA := Load("dailyactivity.csv", strings.NewReader(csv))
		b, errB := Load("dailyactivity.csv", strings.NewReader(csv))

		Convey("Then the tables are identical", func() {
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a, ShouldResemble, b)
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Float", t, func() {
		f, ok := Float(3.5)
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 3.5)

		f, ok = Float("42")
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 42)

		_, ok = Float(math.NaN())
		So(ok, ShouldBeFalse)
		_, ok = Float(math.Inf(1))
		So(ok, ShouldBeFalse)
		_, ok = Float(nil)
		So(ok, ShouldBeFalse)
		_, ok = Float("high")
		So(ok, ShouldBeFalse)
	})

	Convey("Truthy", t, func() {
		So(Truthy(nil), ShouldBeFalse)
		So(Truthy(0.0), ShouldBeFalse)
		So(Truthy(""), ShouldBeFalse)
		So(Truthy(false), ShouldBeFalse)
		So(Truthy(72.0), ShouldBeTrue)
		So(Truthy("restored"), ShouldBeTrue)
	})

	Convey("Clean", t, func() {
		So(Clean(math.NaN()), ShouldBeNil)
		So(Clean(1.0), ShouldEqual, 1.0)
		So(Clean("x"), ShouldEqual, "x")
	})

	Convey("ParseTime", t, func() {
		d, ok := ParseTime("2024-03-01")
		So(ok, ShouldBeTrue)
		So(d.Day(), ShouldEqual, 1)

		ts, ok := ParseTime("2024-03-01T07:15:00.000+02:00")
		So(ok, ShouldBeTrue)
		So(ts.Hour(), ShouldEqual, 7)

		_, ok = ParseTime("yesterday")
		So(ok, ShouldBeFalse)
		_, ok = ParseTime(12.0)
		So(ok, ShouldBeFalse)
	})

	Convey("SortByTime", t, func() {
		rows := []Row{{"day": "2024-01-03"}, {"day": nil}, {"day": "2024-01-01"}}
		sorted := SortByTime(rows, "day")
		So(sorted[0]["day"], ShouldEqual, "2024-01-01")
		So(sorted[1]["day"], ShouldEqual, "2024-01-03")
		So(sorted[2]["day"], ShouldBeNil)
		So(rows[0]["day"], ShouldEqual, "2024-01-03")
	})
}
