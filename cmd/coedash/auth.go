package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/session"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

func newLoginCmd(a *app) *cobra.Command {
	var req model.LoginRequest
	var role string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = model.Role(role)
			if req.Password == "" {
				pw, err := readLine(a.in, a.out, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			if err := validation.New().Struct(req); err != nil {
				return err
			}
			resp, err := a.client().Login(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			if err := session.Save(a.cfg.SessionPath, session.FromAuth(resp)); err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Signed in as %s (%s)", resp.User.Email, resp.User.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "", "Role to sign in as: "+roleList())
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req model.SignupRequest
	var role string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = model.Role(role)
			if req.Password == "" {
				pw, err := readLine(a.in, a.out, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			if err := validation.New().Struct(req); err != nil {
				return err
			}
			resp, err := a.client().Signup(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("sign up: %w", err)
			}
			if err := session.Save(a.cfg.SessionPath, session.FromAuth(resp)); err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Account created for %s", resp.User.Email))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "Account email")
	f.StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	f.StringVar(&role, "role", "", "Role: "+roleList())
	f.StringVar(&req.FirstName, "first-name", "", "First name")
	f.StringVar(&req.LastName, "last-name", "", "Last name")
	f.StringVar(&req.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD)")
	f.StringVar(&req.ContactNumber, "contact", "", "10 digit contact number")
	f.StringVar(&req.Address.Street, "street", "", "Street")
	f.StringVar(&req.Address.City, "city", "", "City")
	f.StringVar(&req.Address.State, "state", "", "State")
	f.StringVar(&req.Address.ZipCode, "zip", "", "Zip code")
	f.StringVar(&req.Address.Country, "country", "", "Country")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(a.cfg.SessionPath); err != nil {
				return err
			}
			success(a.out, "Signed out")
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.session()
			if err != nil {
				return err
			}
			u, err := client.Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			fmt.Fprintln(a.out, styleTitle.Render(strings.TrimSpace(u.FirstName+" "+u.LastName)))
			fmt.Fprintln(a.out, renderKeyValue("Email", u.Email))
			fmt.Fprintln(a.out, renderKeyValue("Role", string(u.Role)))
			if u.ContactNumber != "" {
				fmt.Fprintln(a.out, renderKeyValue("Contact", u.ContactNumber))
			}
			if u.DateOfBirth != "" {
				fmt.Fprintln(a.out, renderKeyValue("Date of birth", u.DateOfBirth))
			}
			addr := u.Address
			parts := make([]string, 0, 5)
			for _, p := range []string{addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				fmt.Fprintln(a.out, renderKeyValue("Address", strings.Join(parts, ", ")))
			}
			return nil
		},
	}
}

func roleList() string {
	names := make([]string, 0, len(model.Roles()))
	for _, r := range model.Roles() {
		names = append(names, fmt.Sprintf("%q", r))
	}
	return strings.Join(names, ", ")
}

func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
