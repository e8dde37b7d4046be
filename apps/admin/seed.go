package main

import (
	"context"
	"fmt"

	"github.com/scholarhub/backend/storage/database/seed"
)

func (cli *commandLine) seed(ctx context.Context) error {
	data, err := seed.Load()
	if err != nil {
		return err
	}
	store, err := cli.openStore(ctx)
	if err != nil {
		return err
	}

	counts, err := seed.Apply(ctx, store.Repos, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "seeded %d students, %d classes, %d assignments, %d grades, %d attendance records into the %s store\n",
		counts.Students, counts.Classes, counts.Assignments, counts.Grades, counts.Attendance, store.Engine)
	return nil
}
