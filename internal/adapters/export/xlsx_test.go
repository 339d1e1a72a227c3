package export

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func mustLoad(name, csv string) *table.Table {
	t, err := table.Load(name, strings.NewReader(csv))
	if err != nil {
		panic(err)
	}
	return t
}

func TestWorkbook(t *testing.T) {
	Convey("Given two uploads whose names differ only in case", t, func() {
		s := session.New([]*table.Table{
			mustLoad("dailysleep.csv", "day;score\n2024-01-01;70\n"),
			mustLoad("DailySleep.csv", "day;score\n2024-02-01;80\n2024-02-02;85\n"),
		})

		var buf bytes.Buffer
		So(Workbook(&buf, s), ShouldBeNil)

		f, err := excelize.OpenReader(&buf)
		So(err, ShouldBeNil)
		defer f.Close()

		Convey("Then each file keeps its own sheet and rows", func() {
			sheets := f.GetSheetList()
			So(len(sheets), ShouldEqual, 3)
			first, err := f.GetRows(sheets[1])
			So(err, ShouldBeNil)
			second, err := f.GetRows(sheets[2])
			So(err, ShouldBeNil)
			So(len(first)+len(second), ShouldEqual, 5)
			So(first[1][0], ShouldNotEqual, second[1][0])
		})
	})

	Convey("Given a session with a recognised and an unknown file", t, func() {
		s := session.New([]*table.Table{
			mustLoad("dailyactivity.csv", "day;score;steps\n2024-01-01;70;5000\n2024-01-02;90;15000\n"),
			mustLoad("notes.csv", "a;b\nx;1\n"),
		})

		var buf bytes.Buffer
		So(Workbook(&buf, s), ShouldBeNil)

		f, err := excelize.OpenReader(&buf)
		So(err, ShouldBeNil)
		defer f.Close()

		Convey("Then the overview comes first and each file has a sheet", func() {
			So(f.GetSheetList(), ShouldResemble, []string{OverviewSheet, "dailyactivity", "notes"})
		})

		Convey("Then the overview lists the computed metrics", func() {
			rows, err := f.GetRows(OverviewSheet)
			So(err, ShouldBeNil)
			So(rows[0][0], ShouldEqual, "Metric")
			var found bool
			for _, r := range rows[1:] {
				if r[0] == "Avg Daily Steps" {
					found = true
					So(r[3], ShouldEqual, "10000")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then recognised files carry their derived columns", func() {
			rows, err := f.GetRows("dailyactivity")
			So(err, ShouldBeNil)
			So(rows[0][:3], ShouldResemble, []string{"day", "score", "steps"})
			So(len(rows[0]), ShouldBeGreaterThan, 3)
			So(len(rows), ShouldEqual, 3)
		})

		Convey("Then unknown files are written as uploaded", func() {
			rows, err := f.GetRows("notes")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{{"a", "b"}, {"x", "1"}})
		})
	})
}

func TestSheetName(t *testing.T) {
	Convey("Sheet names are sanitised, truncated and unique", t, func() {
		used := map[string]bool{"overview": true}
		So(sheetName("exports/daily:sleep.csv", used), ShouldEqual, "daily_sleep")
		So(sheetName("daily:sleep.csv", used), ShouldEqual, "daily_sleep_2")
		long := sheetName(strings.Repeat("x", 40)+".csv", used)
		So(len(long), ShouldEqual, 31)
		again := sheetName(strings.Repeat("x", 40)+".csv", used)
		So(again, ShouldEqual, strings.Repeat("x", 29)+"_2")
		So(sheetName("Overview.csv", used), ShouldEqual, "Overview_2")
		So(sheetName(".csv", used), ShouldEqual, "data")
	})

	Convey("Names differing only in case get distinct sheets", t, func() {
		used := map[string]bool{"overview": true}
		So(sheetName("dailysleep.csv", used), ShouldEqual, "dailysleep")
		So(sheetName("DailySleep.csv", used), ShouldEqual, "DailySleep_2")
		So(sheetName("OVERVIEW.csv", used), ShouldEqual, "OVERVIEW_2")
	})

	Convey("Long multibyte names are cut on rune boundaries", t, func() {
		used := map[string]bool{}
		name := sheetName(strings.Repeat("é", 40)+".csv", used)
		So(utf8.ValidString(name), ShouldBeTrue)
		So(utf8.RuneCountInString(name), ShouldEqual, 31)
		again := sheetName(strings.Repeat("é", 40)+".csv", used)
		So(again, ShouldEqual, strings.Repeat("é", 29)+"_2")
	})
}
