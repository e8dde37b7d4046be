package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core/report"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
)

var createFileFunc = func(name string) (io.WriteCloser, error) { return os.Create(name) } // mockable

func (cli *commandLine) export(ctx context.Context, what string, args []string) error {
	switch what {
	case "students":
		return cli.exportStudents(ctx, args)
	case "gradebook":
		return cli.exportGradebook(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) views(ctx context.Context) (*view.Views, error) {
	store, err := cli.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return view.New(store.Services(), cli.logger), nil
}

func (cli *commandLine) exportStudents(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("export students", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	format := cmd.String("format", "csv", "csv or xlsx")
	search := cmd.String("search", "", "only the students matching the search")
	status := cmd.String("status", "", "only the students having the status (Active|Inactive)")
	output := cmd.String("o", "", "output file (default students.<format>)")
	if err := cmd.Parse(args); err != nil {
		return errHelp
	}

	var write func(io.Writer, []student.Student) error
	switch *format {
	case "csv":
		write = report.WriteStudentsCSV
	case "xlsx":
		write = report.WriteStudentsXLSX
	default:
		cmd.Usage()
		return errHelp
	}
	if *output == "" {
		*output = "students." + *format
	}

	views, err := cli.views(ctx)
	if err != nil {
		return err
	}
	filter := &student.QueryFilter{Search: *search, Status: *status}
	filter.Clean()
	sv, err := views.StudentsPage(filter, nil).Load(ctx)
	if err != nil {
		return err
	}

	if err = writeFile(*output, func(w io.Writer) error { return write(w, sv.Students) }); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "exported %d of %d students to %s\n", sv.Filtered, sv.Total, *output)
	return nil
}

func (cli *commandLine) exportGradebook(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("export gradebook", flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	classID := cmd.Int("class", 0, "the class ID")
	output := cmd.String("o", "", "output file (default gradebook-<class>.xlsx)")
	if err := cmd.Parse(args); err != nil {
		return errHelp
	}
	if *classID <= 0 {
		cmd.Usage()
		return errHelp
	}
	if *output == "" {
		*output = fmt.Sprintf("gradebook-%d.xlsx", *classID)
	}

	views, err := cli.views(ctx)
	if err != nil {
		return err
	}
	gb, err := views.Gradebook(ctx, *classID)
	if err != nil {
		return err
	}

	if err = writeFile(*output, func(w io.Writer) error { return report.WriteGradebookXLSX(w, gb) }); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "exported the %s gradebook to %s\n", gb.ClassName, *output)
	return nil
}

func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := createFileFunc(name)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "closing output file")
		}
	}()
	return write(f)
}
